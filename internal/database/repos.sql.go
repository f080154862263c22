// internal/database/repos.sql.go
package database

import "context"

const getRepoByFullName = `
SELECT id, full_name, project_id, url, provider, created_at, updated_at
FROM repos
WHERE full_name = $1
`

func (q *Queries) GetRepoByFullName(ctx context.Context, fullName string) (Repo, error) {
	row := q.db.QueryRow(ctx, getRepoByFullName, fullName)
	var r Repo
	err := row.Scan(&r.ID, &r.FullName, &r.ProjectID, &r.URL, &r.Provider, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getRepoByID = `
SELECT id, full_name, project_id, url, provider, created_at, updated_at
FROM repos
WHERE id = $1
`

func (q *Queries) GetRepoByID(ctx context.Context, id int64) (Repo, error) {
	row := q.db.QueryRow(ctx, getRepoByID, id)
	var r Repo
	err := row.Scan(&r.ID, &r.FullName, &r.ProjectID, &r.URL, &r.Provider, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const createRepo = `
INSERT INTO repos (full_name, project_id, url, provider)
VALUES ($1, $2, $3, $4)
RETURNING id, full_name, project_id, url, provider, created_at, updated_at
`

type CreateRepoParams struct {
	FullName  string
	ProjectID int64
	URL       string
	Provider  string
}

func (q *Queries) CreateRepo(ctx context.Context, arg CreateRepoParams) (Repo, error) {
	row := q.db.QueryRow(ctx, createRepo, arg.FullName, arg.ProjectID, arg.URL, arg.Provider)
	var r Repo
	err := row.Scan(&r.ID, &r.FullName, &r.ProjectID, &r.URL, &r.Provider, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// project_id is deliberately not part of the update set: reparenting a repo
// is rejected upstream.
const updateRepoMetadata = `
UPDATE repos
SET url = $2, provider = $3, updated_at = now()
WHERE id = $1
RETURNING id, full_name, project_id, url, provider, created_at, updated_at
`

type UpdateRepoMetadataParams struct {
	ID       int64
	URL      string
	Provider string
}

func (q *Queries) UpdateRepoMetadata(ctx context.Context, arg UpdateRepoMetadataParams) (Repo, error) {
	row := q.db.QueryRow(ctx, updateRepoMetadata, arg.ID, arg.URL, arg.Provider)
	var r Repo
	err := row.Scan(&r.ID, &r.FullName, &r.ProjectID, &r.URL, &r.Provider, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
