// internal/database/projects.sql.go
package database

import (
	"context"
	"time"
)

const getProjectBySlug = `
SELECT id, slug, name, created_at, updated_at
FROM projects
WHERE slug = $1
`

func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectBySlug, slug)
	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createProject = `
INSERT INTO projects (slug, name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
RETURNING id, slug, name, created_at, updated_at
`

type CreateProjectParams struct {
	Slug      string
	Name      string
	CreatedAt time.Time
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject, arg.Slug, arg.Name, arg.CreatedAt)
	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const updateProjectName = `
UPDATE projects
SET name = $2, updated_at = now()
WHERE id = $1
RETURNING id, slug, name, created_at, updated_at
`

type UpdateProjectNameParams struct {
	ID   int64
	Name string
}

func (q *Queries) UpdateProjectName(ctx context.Context, arg UpdateProjectNameParams) (Project, error) {
	row := q.db.QueryRow(ctx, updateProjectName, arg.ID, arg.Name)
	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listProjects = `
SELECT id, slug, name, created_at, updated_at
FROM projects
WHERE id > $1
ORDER BY id ASC
LIMIT $2
`

type ListProjectsParams struct {
	Cursor int64
	Limit  int32
}

func (q *Queries) ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjects, arg.Cursor, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
