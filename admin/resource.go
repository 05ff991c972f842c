// Package admin builds the administrative CRUD pages over registered resources.
// Resources expose their records as table rows and are independent of the transport.
package admin

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/ui/form"
	"github.com/trezcool/masomo-admin/ui/table"
)

var (
	// errors
	ErrUnknownResource = errors.New("unknown resource")
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("resource already registered")
)

// Resource is a named collection of records managed by the admin pages.
type Resource interface {
	// Name is the URL segment of the resource, e.g. "students".
	Name() string
	// Title is the plural display name, e.g. "Students".
	Title() string
	Columns() []table.Column
	// KeyField is the row field holding the record ID.
	KeyField() string
	// Form returns the fields of the create (edit=false) or edit form.
	Form(edit bool) []form.Field

	List(ctx context.Context) ([]table.Row, error)
	Get(ctx context.Context, id string) (table.Row, error)
	// Create and Update return a *core.ValidationError when values are invalid.
	Create(ctx context.Context, values map[string]string) (table.Row, error)
	Update(ctx context.Context, id string, values map[string]string) (table.Row, error)
	Delete(ctx context.Context, ids ...string) (int, error)
}

// Detail is one label/value pair shown in an expanded row.
type Detail struct {
	Label string
	Value string
}

// Detailer is implemented by resources whose rows can be expanded.
type Detailer interface {
	Details(row table.Row) []Detail
}

// Singular is implemented by resources whose singular title is not Title minus its "s".
type Singular interface {
	SingularTitle() string
}

func singularTitle(res Resource) string {
	if s, ok := res.(Singular); ok {
		return s.SingularTitle()
	}
	return strings.TrimSuffix(res.Title(), "s")
}

type actorKey struct{}

// WithActor returns a context carrying the user performing the admin operations.
func WithActor(ctx context.Context, usr user.User) context.Context {
	return context.WithValue(ctx, actorKey{}, usr)
}

// Actor returns the user set by WithActor.
func Actor(ctx context.Context) (user.User, bool) {
	usr, ok := ctx.Value(actorKey{}).(user.User)
	return usr, ok
}

// Registry holds the resources served by the admin pages.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
}

func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]Resource)}
}

// Register adds res; its name must be unique and it must describe at least one column.
func (reg *Registry) Register(res Resource) error {
	if err := vala.BeginValidation().Validate(
		vala.IsNotNil(res, "resource"),
	).Check(); err != nil {
		return errors.Wrap(err, "registering resource")
	}
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(res.Name(), "name"),
		vala.StringNotEmpty(res.Title(), "title"),
		vala.StringNotEmpty(res.KeyField(), "keyField"),
		vala.GreaterThan(len(res.Columns()), 0, "columns"),
	).Check(); err != nil {
		return errors.Wrapf(err, "registering resource %q", res.Name())
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.resources[res.Name()]; ok {
		return errors.Wrap(ErrDuplicate, res.Name())
	}
	reg.resources[res.Name()] = res
	return nil
}

// MustRegister is like Register but panics on error.
func (reg *Registry) MustRegister(resources ...Resource) {
	for _, res := range resources {
		if err := reg.Register(res); err != nil {
			panic(err)
		}
	}
}

func (reg *Registry) Get(name string) (Resource, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if res, ok := reg.resources[name]; ok {
		return res, nil
	}
	return nil, ErrUnknownResource
}

// Resources returns the registered resources ordered by name.
func (reg *Registry) Resources() []Resource {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]Resource, 0, len(reg.resources))
	for _, res := range reg.resources {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
