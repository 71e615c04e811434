package sqlinline

const QSelectGatewayCredential = `--sql 0f6f39aa-97c2-4d99-bb35-2d9f6c0a8e41
select secret
from gateway_credentials
where gateway = $1::text
limit 1;
`

const QUpsertGatewayCredential = `--sql 9e0cbe5c-41f9-4a83-b1bc-6a2a59f07723
insert into gateway_credentials(gateway, secret, props, updated_at)
values ($1::text, $2::text, $3::jsonb, now())
on conflict (gateway) do update
set secret = excluded.secret,
    props = excluded.props,
    updated_at = now();
`
