package sqlinline

const QListCategories = `--sql 89dd49a6-42cc-43f3-99b2-38d18d8d4073
select c.id, c.slug, c.name
from categories c
order by c.name asc;
`
