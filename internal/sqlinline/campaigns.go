package sqlinline

const QSelectCampaignBySlug = `--sql e4b9322f-81c3-496c-a09a-28e4aa1ec525
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at
from campaigns c
where c.slug = $1::text
  and c.deleted_at is null
limit 1;
`

const QSelectCampaignByID = `--sql 6e3d4544-2b45-4b38-83ba-3d88136770e1
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at
from campaigns c
where c.id = $1::uuid
  and c.deleted_at is null
limit 1;
`

// QCreditCampaignFunds is an atomic in-database increment; funds_raised is
// never computed in application memory.
const QCreditCampaignFunds = `--sql 99c5a50e-0898-4792-a5e9-f8eb9e39ec3c
update campaigns
set funds_raised_int = funds_raised_int + $2::bigint,
    updated_at = now()
where id = $1::uuid
returning user_id;
`

// Campaign listing. Tabs mirror the browse filters: every query takes the
// same ($1 category slug or '', $2 min goal, $3 max goal, $4 limit, $5 offset)
// signature so the handler stays uniform.

const QListCampaignsAll = `--sql a8a2e93a-fffb-4ffd-8f42-b3aaf9274b3a
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at,
       count(*) over ()
from campaigns c
left join categories cat on cat.id = c.category_id
where c.deleted_at is null
  and c.status = 'active'
  and ($1::text = '' or cat.slug = $1::text)
  and c.goal_int >= $2::bigint
  and c.goal_int <= $3::bigint
order by (c.expires_at is not null and c.expires_at <= now()), c.featured desc, c.created_at desc
limit $4::int offset $5::int;
`

const QListCampaignsLatest = `--sql f6c3157c-507e-4eef-9c58-a6eec8c26ab2
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at,
       count(*) over ()
from campaigns c
left join categories cat on cat.id = c.category_id
where c.deleted_at is null
  and c.status = 'active'
  and not c.is_complete
  and (c.expires_at is null or c.expires_at > now() + interval '1 day')
  and ($1::text = '' or cat.slug = $1::text)
  and c.goal_int >= $2::bigint
  and c.goal_int <= $3::bigint
order by c.created_at desc
limit $4::int offset $5::int;
`

const QListCampaignsFeatured = `--sql 05df1ca2-4c1f-4b03-af80-1cefbb5a1059
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at,
       count(*) over ()
from campaigns c
left join categories cat on cat.id = c.category_id
where c.deleted_at is null
  and c.status = 'active'
  and c.featured
  and not c.is_complete
  and (c.expires_at is null or c.expires_at > now() + interval '1 day')
  and ($1::text = '' or cat.slug = $1::text)
  and c.goal_int >= $2::bigint
  and c.goal_int <= $3::bigint
order by c.created_at desc
limit $4::int offset $5::int;
`

const QListCampaignsPopular = `--sql 63c6e6c5-6722-4bb1-a4c0-78fadcad2c44
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at,
       count(*) over ()
from campaigns c
left join categories cat on cat.id = c.category_id
join lateral (
    select count(*) as approved_count
    from donations d
    where d.campaign_id = c.id and d.status = 'approved'
) dc on true
where c.deleted_at is null
  and c.status = 'active'
  and not c.is_complete
  and dc.approved_count > 5
  and (c.expires_at is null or c.expires_at > now() + interval '1 day')
  and ($1::text = '' or cat.slug = $1::text)
  and c.goal_int >= $2::bigint
  and c.goal_int <= $3::bigint
order by dc.approved_count desc, c.created_at desc
limit $4::int offset $5::int;
`

const QListCampaignsEnded = `--sql 97f47669-7d1e-4c30-8942-2f08d2a16a38
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at,
       count(*) over ()
from campaigns c
left join categories cat on cat.id = c.category_id
where c.deleted_at is null
  and c.status = 'active'
  and (c.is_complete or (c.expires_at is not null and c.expires_at < now() + interval '1 day'))
  and ($1::text = '' or cat.slug = $1::text)
  and c.goal_int >= $2::bigint
  and c.goal_int <= $3::bigint
order by c.created_at desc
limit $4::int offset $5::int;
`

const QListRelatedCampaigns = `--sql 8d16c558-bdad-4bc5-b742-dd96fe158d8e
select c.id, c.user_id, c.category_id, c.slug, c.title, c.summary,
       c.goal_int, c.funds_raised_int, c.featured, c.is_complete, c.status, c.expires_at, c.created_at
from campaigns c
where c.deleted_at is null
  and c.status = 'active'
  and c.id <> $1::uuid
order by (c.category_id = $2::uuid) desc, random()
limit $3::int;
`
