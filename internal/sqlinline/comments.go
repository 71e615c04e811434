package sqlinline

const QInsertComment = `--sql 4de4c8f4-457a-4fcb-a0c7-3d511a949462
insert into comments(id, campaign_id, first_name, last_name, email, body, anonymous, status, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::boolean, 'inactive', now(), now())
returning id;
`

// QActivateComment runs inside the donation finalization transaction, so a
// comment only ever becomes visible together with its approved donation.
const QActivateComment = `--sql f49e4b29-ead4-4d0a-8cb4-36343db7bfac
update comments
set status = 'active',
    updated_at = now()
where id = $1::uuid;
`

const QListActiveComments = `--sql 0fe2523c-1630-4e4f-b4fb-1f2e165ac15d
select co.id, co.first_name, co.last_name, co.body, co.anonymous, co.created_at
from comments co
join campaigns c on c.id = co.campaign_id
where c.slug = $1::text
  and co.status = 'active'
order by co.created_at desc
limit $2::int offset $3::int;
`
