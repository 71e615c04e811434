package sqlinline

const QSelectRewardByID = `--sql b4742980-5d81-4edb-bce0-3e9f303385ac
select r.id, r.campaign_id, r.title, r.description, r.amount_int, r.requires_shipping, r.status, r.created_at
from rewards r
where r.id = $1::uuid
  and r.deleted_at is null
limit 1;
`

const QListRewardsByCampaign = `--sql 6f590fd5-6b59-4c84-875b-60363e4864d2
select r.id, r.campaign_id, r.title, r.description, r.amount_int, r.requires_shipping, r.status, r.created_at
from rewards r
where r.campaign_id = $1::uuid
  and r.deleted_at is null
  and r.status = 'active'
order by r.amount_int asc;
`
