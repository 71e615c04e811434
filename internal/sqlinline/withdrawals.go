package sqlinline

const QInsertWithdrawal = `--sql c4ce7197-e602-4640-aaae-d16c4145b3ab
insert into withdrawals(id, user_id, withdrawal_settings_id, amount_int, status, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::bigint, 'pending', now(), now())
returning id;
`

const QSelectWithdrawalByID = `--sql 9f447669-cd8a-4917-b1c5-5c4f5f33d674
select w.id, w.user_id, w.withdrawal_settings_id, w.amount_int, w.status, w.created_at
from withdrawals w
where w.id = $1::uuid
limit 1;
`

// The status guard makes approve/reject idempotent against double submits.
const QApproveWithdrawal = `--sql c712c847-5b9e-4b25-98cc-6fbad9e69026
update withdrawals
set status = 'approved',
    updated_at = now()
where id = $1::uuid
  and status = 'pending'
returning user_id, amount_int;
`

const QRejectWithdrawal = `--sql 575762f1-0306-4cc3-b612-7f21fd5db55c
update withdrawals
set status = 'rejected',
    updated_at = now()
where id = $1::uuid
  and status = 'pending'
returning user_id, amount_int;
`

const QListWithdrawalsByUser = `--sql b07b1c59-1d7b-4a4f-b630-b5ab7d2b0e7f
select w.id, w.amount_int, w.status, w.created_at, coalesce(ws.bank_name, ''), coalesce(ws.account_name, '')
from withdrawals w
left join withdrawal_settings ws on ws.id = w.withdrawal_settings_id
where w.user_id = $1::uuid
order by w.created_at desc
limit $2::int offset $3::int;
`

const QUpsertWithdrawalSettings = `--sql 55d7135e-33f9-4161-8dc7-aa482f18ef0f
insert into withdrawal_settings(id, user_id, bank_code, bank_name, account_number, account_hash, account_name, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, now(), now())
on conflict (user_id) do update set
    bank_code = excluded.bank_code,
    bank_name = excluded.bank_name,
    account_number = excluded.account_number,
    account_hash = excluded.account_hash,
    account_name = excluded.account_name,
    updated_at = now()
returning id;
`

const QSelectWithdrawalSettingsByUser = `--sql 90295c41-31ba-40c2-887b-49d30ea45366
select ws.id, ws.user_id, ws.bank_code, ws.bank_name, ws.account_number, ws.account_name, ws.created_at
from withdrawal_settings ws
where ws.user_id = $1::uuid
limit 1;
`
