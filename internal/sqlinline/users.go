// Package sqlinline holds the SQL statements executed by the
// repositories. Every statement starts with a `--sql <uuid>` marker line
// consumed by infra.SQLRunner for attributable query logging.
package sqlinline

const QInsertUser = `--sql 7c1f4b7e-2f30-4d4c-9a70-5b1d2c8e91aa
insert into users (id, email, name, password_hash, role, points, coupons, last_check_in)
values ($1::uuid, $2, $3, $4, $5, $6, $7::jsonb, $8);
`

const QSelectUserByID = `--sql 3e9a2c51-8d47-4f7b-b2e6-04c9d1f3a772
select id, email, name, password_hash, role, points, coupons, last_check_in, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 9b5e7d20-6a13-4c88-8f41-de2b90c47f15
select id, email, name, password_hash, role, points, coupons, last_check_in, created_at, updated_at
from users
where email = $1
limit 1;
`

const QSelectAllUsers = `--sql 51d8f3ac-07b2-49e5-a6c3-7f80e4b21d96
select id, email, name, password_hash, role, points, coupons, last_check_in, created_at, updated_at
from users
order by points desc, name, email;
`

// Conditional write: only applies if every loyalty field still matches
// what the caller read. Guarding the coupon array as well as points and
// last_check_in means racing check-ins cannot both award a point, and a
// stale redemption cannot revert another coupon's redeemed flag.
const QUpdateLoyalty = `--sql c47b9e12-5f60-4a3d-bd28-163a8f0c54e9
update users
set points = $2,
    coupons = $3::jsonb,
    last_check_in = $4,
    updated_at = now()
where id = $1::uuid
  and points = $5
  and coupons = $6::jsonb
  and last_check_in is not distinct from $7;
`

const QSetRole = `--sql e82c61f4-9ad5-4b07-97f3-28d04c6ba531
update users
set role = $2,
    updated_at = now()
where id = $1::uuid;
`

const QStatsSummary = `--sql 6f0d82c7-314e-4d59-8ba1-c95e27f4068d
select
    count(*) as total_users,
    coalesce(sum(points), 0) as total_check_ins,
    coalesce(sum(jsonb_array_length(coupons)), 0) as coupons_issued,
    coalesce(sum((
        select count(*)
        from jsonb_array_elements(coupons) c
        where (c ->> 'redeemed')::boolean
    )), 0) as coupons_redeemed
from users;
`
