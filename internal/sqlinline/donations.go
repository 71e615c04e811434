package sqlinline

const QInsertDonation = `--sql 7b4bf8a9-3282-4f64-9ecc-fe412ccf94bf
insert into donations(
    id, campaign_id, reward_id, first_name, last_name, email, phone_number,
    amount_int, gateway, status, anonymous, requires_shipping,
    shipping_country, shipping_state, shipping_city, shipping_address, shipping_postal_code,
    created_at, updated_at)
values (gen_random_uuid(), $1::uuid, nullif($2::text, '')::uuid, $3::text, $4::text, $5::text, $6::text,
        $7::bigint, $8::text, 'pending', $9::boolean, $10::boolean,
        $11::text, $12::text, $13::text, $14::text, $15::text,
        now(), now())
returning id;
`

const QSelectDonationByID = `--sql ad0f45ea-8393-4127-ac4f-a114fd2151f9
select d.id, d.campaign_id, coalesce(d.reward_id::text, ''), d.first_name, d.last_name, d.email, d.phone_number,
       d.amount_int, d.gateway, coalesce(d.channel, ''), coalesce(d.transaction_reference, ''), d.status,
       d.anonymous, d.requires_shipping, d.created_at
from donations d
where d.id = $1::uuid
limit 1;
`

// QApproveDonation finalizes a donation only while it is still pending. The
// status guard is the idempotency barrier for replayed gateway callbacks.
const QApproveDonation = `--sql 5b41d64b-c6fd-4107-a516-7ca9cf599945
update donations
set status = 'approved',
    channel = $2::text,
    transaction_reference = $3::text,
    updated_at = now()
where id = $1::uuid
  and status = 'pending'
returning campaign_id, amount_int;
`

const QSelectDonationFinalState = `--sql a6a3391c-1ecb-4d16-a734-460230cb2c5b
select campaign_id, status
from donations
where id = $1::uuid
limit 1;
`

const QListDonationsByOwner = `--sql acbd9e64-c0bd-4c4d-b686-bb4caa15f026
select d.id, d.first_name, d.last_name, d.amount_int, d.gateway, d.status, d.anonymous, d.created_at,
       c.id, c.title, c.slug
from donations d
join campaigns c on c.id = d.campaign_id
where c.user_id = $1::uuid
order by d.created_at desc
limit $2::int offset $3::int;
`
