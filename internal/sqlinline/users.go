package sqlinline

// QCreditUserBalance and QDebitUserBalance mutate the beneficiary balance with
// atomic in-database arithmetic. The debit refuses to overdraw.

const QCreditUserBalance = `--sql 82149683-5a4b-4d71-83f4-55edd8a54ec3
update users
set balance_int = balance_int + $2::bigint,
    updated_at = now()
where id = $1::uuid;
`

const QDebitUserBalance = `--sql c650d3d3-b1fe-48f2-b53b-d5b0ed6ea084
update users
set balance_int = balance_int - $2::bigint,
    updated_at = now()
where id = $1::uuid
  and balance_int >= $2::bigint
returning balance_int;
`

const QSelectUserByID = `--sql 6ab8cabf-cb11-4796-b15c-4c2de18468ba
select u.id, u.first_name, u.last_name, u.email, u.role, u.balance_int, u.created_at
from users u
where u.id = $1::uuid
limit 1;
`
