// Package reference resolves polymorphic (kind, id) targets and removes the
// interaction rows that point at them.
package reference

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"anoa.com/indieplatform/internal/entity"
	"anoa.com/indieplatform/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Target describes where a kind lives and which columns answer the questions the
// interaction layer asks about it.
type Target struct {
	Kind          entity.Kind
	Table         string
	OwnerColumn   string
	VisibleColumn string
	LabelColumn   string
	SlugColumn    string
	Link          func(r Resolved) string
}

// Resolved is a reference confirmed to exist.
type Resolved struct {
	Ref     entity.Ref
	OwnerID uuid.UUID
	Visible bool
	Label   string
	Slug    string
}

func (r Resolved) Link(reg *Registry) string {
	if t, ok := reg.targets[r.Ref.Kind]; ok && t.Link != nil {
		return t.Link(r)
	}
	return ""
}

type Registry struct {
	targets map[entity.Kind]Target
}

// NewRegistry knows every kind the platform lets users comment on, like or report.
func NewRegistry() *Registry {
	r := &Registry{targets: make(map[entity.Kind]Target)}

	r.Register(Target{
		Kind: entity.KindGame, Table: "games",
		OwnerColumn: "developer_id", VisibleColumn: "is_published", LabelColumn: "title", SlugColumn: "slug",
		Link: func(r Resolved) string { return "/games/" + r.Slug },
	})
	r.Register(Target{
		Kind: entity.KindPost, Table: "posts",
		OwnerColumn: "author_id", VisibleColumn: "is_published", LabelColumn: "title", SlugColumn: "slug",
		Link: func(r Resolved) string { return "/posts/" + r.Slug },
	})
	r.Register(Target{
		Kind: entity.KindReview, Table: "reviews",
		OwnerColumn: "user_id", VisibleColumn: "is_public", LabelColumn: "title",
		Link: func(r Resolved) string { return "/reviews/" + r.Ref.ID.String() },
	})
	r.Register(Target{
		Kind: entity.KindComment, Table: "comments",
		OwnerColumn: "user_id", VisibleColumn: "is_public", LabelColumn: "content",
	})
	r.Register(Target{
		Kind: entity.KindUser, Table: "users",
		OwnerColumn: "id", VisibleColumn: "public_profile", LabelColumn: "username", SlugColumn: "username",
		Link: func(r Resolved) string { return "/profiles/" + r.Slug },
	})

	return r
}

func (r *Registry) Register(t Target) {
	r.targets[t.Kind] = t
}

func (r *Registry) Supports(kind entity.Kind) bool {
	_, ok := r.targets[kind]
	return ok
}

func (r *Registry) Kinds() []entity.Kind {
	kinds := make([]entity.Kind, 0, len(r.targets))
	for k := range r.targets {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

type resolvedRow struct {
	OwnerID uuid.UUID
	Visible bool
	Label   string
	Slug    string
}

// Resolve looks ref up in its owning table. Unknown kinds and missing rows are NotFound.
func (r *Registry) Resolve(ctx context.Context, db *gorm.DB, ref entity.Ref) (*Resolved, error) {
	t, ok := r.targets[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown target kind %q", apperror.ErrNotFound, ref.Kind)
	}

	slugExpr := "''"
	if t.SlugColumn != "" {
		slugExpr = t.SlugColumn
	}

	var row resolvedRow
	err := db.WithContext(ctx).
		Table(t.Table).
		Select(fmt.Sprintf("%s AS owner_id, %s AS visible, %s AS label, %s AS slug", t.OwnerColumn, t.VisibleColumn, t.LabelColumn, slugExpr)).
		Where("id = ?", ref.ID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotFound, ref)
	}
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Ref:     ref,
		OwnerID: row.OwnerID,
		Visible: row.Visible,
		Label:   row.Label,
		Slug:    row.Slug,
	}, nil
}

// ResolveVisible is Resolve plus visibility: hidden targets are NotFound to everyone
// except their owner.
func (r *Registry) ResolveVisible(ctx context.Context, db *gorm.DB, ref entity.Ref, viewer *uuid.UUID) (*Resolved, error) {
	res, err := r.Resolve(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	if !res.Visible && (viewer == nil || *viewer != res.OwnerID) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotFound, ref)
	}
	return res, nil
}

// Resolver binds a Registry to a database handle for services that do not deal in
// transactions themselves.
type Resolver struct {
	reg *Registry
	db  *gorm.DB
}

func NewResolver(db *gorm.DB, reg *Registry) *Resolver {
	return &Resolver{reg: reg, db: db}
}

func (r *Resolver) Resolve(ctx context.Context, ref entity.Ref) (*Resolved, error) {
	return r.reg.Resolve(ctx, r.db, ref)
}

func (r *Resolver) ResolveVisible(ctx context.Context, ref entity.Ref, viewer *uuid.UUID) (*Resolved, error) {
	return r.reg.ResolveVisible(ctx, r.db, ref, viewer)
}

func (r *Resolver) Link(res *Resolved) string {
	return res.Link(r.reg)
}

// ParseRef validates kind against the registry and id as a uuid.
func (r *Resolver) ParseRef(kind, id string) (entity.Ref, error) {
	k, ok := entity.ParseKind(kind)
	if !ok || !r.reg.Supports(k) {
		return entity.Ref{}, fmt.Errorf("%w: unknown target kind %q", apperror.ErrNotFound, kind)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return entity.Ref{}, fmt.Errorf("%w: invalid target id", apperror.ErrNotFound)
	}
	return entity.Ref{Kind: k, ID: parsed}, nil
}
