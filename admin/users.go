package admin

import (
	"context"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/ui/form"
	"github.com/trezcool/masomo-admin/ui/table"
)

var ErrPermissionDenied = errors.New("permission denied")

const (
	roleAboveOwnText   = "you cannot assign a role above your own"
	pwdMismatchText    = "passwords do not match"
	usernamePatternMsg = "only alphanumeric characters and underscores are allowed"
)

// UserResource manages the users having a role that starts with one of its role prefix.
type UserResource struct {
	name     string
	title    string
	singular string
	prefix   string
	// roles offered by the forms; the first one is the default
	roles []string

	svc        *user.Service
	validate   *validator.Validate
	translator ut.Translator
	forms      *form.Validator
}

var (
	_ Resource = (*UserResource)(nil)
	_ Detailer = (*UserResource)(nil)
	_ Singular = (*UserResource)(nil)
)

func newUserResource(name, title, singular, prefix string, roles []string, svc *user.Service, validate *validator.Validate, translator ut.Translator) *UserResource {
	return &UserResource{
		name:       name,
		title:      title,
		singular:   singular,
		prefix:     prefix,
		roles:      roles,
		svc:        svc,
		validate:   validate,
		translator: translator,
		forms:      form.NewValidator(),
	}
}

func NewStudents(svc *user.Service, validate *validator.Validate, translator ut.Translator) *UserResource {
	return newUserResource("students", "Students", "Student", user.RoleStudent, user.StudentRoles, svc, validate, translator)
}

func NewTeachers(svc *user.Service, validate *validator.Validate, translator ut.Translator) *UserResource {
	return newUserResource("teachers", "Teachers", "Teacher", user.RoleTeacher, user.TeacherRoles, svc, validate, translator)
}

func NewStaff(svc *user.Service, validate *validator.Validate, translator ut.Translator) *UserResource {
	return newUserResource("staff", "Staff", "Staff Member", user.RoleAdmin, user.AdminRoles, svc, validate, translator)
}

func (r *UserResource) Name() string          { return r.name }
func (r *UserResource) Title() string         { return r.title }
func (r *UserResource) SingularTitle() string { return r.singular }
func (r *UserResource) KeyField() string      { return "id" }

func (r *UserResource) Columns() []table.Column {
	return []table.Column{
		{Key: "name", Title: "Name", Sortable: true, Filterable: true},
		{Key: "username", Title: "Username", Sortable: true, Filterable: true},
		{Key: "email", Title: "Email", Sortable: true, Filterable: true},
		{Key: "roles", Title: "Role", Filterable: true},
		{Key: "is_active", Title: "Active", Sortable: true, Align: table.AlignCenter, Width: "90px", Render: yesNo},
		{Key: "created_at", Title: "Joined", Sortable: true, Align: table.AlignRight, Width: "120px", Render: date},
	}
}

func yesNo(v interface{}, _ table.Row) string {
	if b, ok := v.(bool); ok && b {
		return "Yes"
	}
	return "No"
}

func date(v interface{}, _ table.Row) string {
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return t.Format("2006-01-02")
	}
	return ""
}

func (r *UserResource) Form(edit bool) []form.Field {
	lower := func(s string) string { return core.CleanString(s, true /* lower */) }
	passwordPolicy := func(value string, values map[string]string) string {
		return user.PasswordPolicyError(value, core.CleanString(values["name"]), lower(values["username"]), lower(values["email"]))
	}
	passwordMatch := func(value string, values map[string]string) string {
		if value != values["password"] {
			return pwdMismatchText
		}
		return ""
	}

	fields := []form.Field{
		{Name: "name", Label: "Full name", Type: form.Text, Rules: form.Rules{Required: true, MaxLength: 100}},
		{
			Name: "username", Label: "Username", Type: form.Text,
			HelpText: "At least 6 characters; letters, digits and underscores.",
			Rules:    form.Rules{MinLength: 6, MaxLength: 50, Pattern: `^\w+$`, PatternMessage: usernamePatternMsg},
		},
		{
			Name: "email", Label: "Email", Type: form.Email, Placeholder: "name@school.cd",
			Rules: form.Rules{MaxLength: 254, Pattern: `^[^@\s]+@[^@\s]+\.[^@\s]+$`, PatternMessage: "must be a valid email address"},
		},
	}
	if len(r.roles) > 1 {
		opts := make([]form.Option, 0, len(r.roles))
		for _, role := range r.roles {
			opts = append(opts, form.Option{Value: role, Label: user.RoleName(role)})
		}
		fields = append(fields, form.Field{
			Name: "role", Label: "Role", Type: form.Select, Options: opts, Value: r.roles[0],
			Rules: form.Rules{Required: true, Custom: func(value string, _ map[string]string) string {
				if !r.offersRole(value) {
					return "invalid role"
				}
				return ""
			}},
		})
	}
	if edit {
		fields = append(fields,
			form.Field{Name: "is_active", Label: "Active", Type: form.Checkbox},
			form.Field{Name: "password", Label: "New password", Type: form.Password, HelpText: "Leave blank to keep the current password.", Rules: form.Rules{Custom: passwordPolicy}},
			form.Field{Name: "password_confirm", Label: "Confirm new password", Type: form.Password, Rules: form.Rules{Custom: passwordMatch}},
		)
		return fields
	}
	return append(fields,
		form.Field{Name: "password", Label: "Password", Type: form.Password, Rules: form.Rules{Required: true, Custom: passwordPolicy}},
		form.Field{Name: "password_confirm", Label: "Confirm password", Type: form.Password, Rules: form.Rules{Required: true, Custom: passwordMatch}},
	)
}

func (r *UserResource) offersRole(role string) bool {
	for _, rl := range r.roles {
		if rl == role {
			return true
		}
	}
	return false
}

func (r *UserResource) row(usr user.User) table.Row {
	var (
		role  string
		names = make([]string, 0, len(usr.Roles))
	)
	for _, rl := range usr.Roles {
		if role == "" && strings.HasPrefix(rl, r.prefix) {
			role = rl
		}
		names = append(names, user.RoleName(rl))
	}
	row := table.Row{
		"id":         usr.ID,
		"name":       usr.Name,
		"username":   usr.Username,
		"email":      usr.Email,
		"role":       role,
		"roles":      strings.Join(names, ", "),
		"is_active":  usr.IsActive,
		"created_at": usr.CreatedAt,
		"last_login": nil,
	}
	if !usr.LastLogin.IsZero() {
		row["last_login"] = usr.LastLogin
	}
	return row
}

func (r *UserResource) Details(row table.Row) []Detail {
	lastLogin := "Never"
	if t, ok := row["last_login"].(time.Time); ok {
		lastLogin = t.Format("2006-01-02 15:04 MST")
	}
	var joined string
	if t, ok := row["created_at"].(time.Time); ok {
		joined = t.Format("2006-01-02 15:04 MST")
	}
	return []Detail{
		{Label: "Username", Value: table.Text(row["username"])},
		{Label: "Email", Value: table.Text(row["email"])},
		{Label: "Roles", Value: table.Text(row["roles"])},
		{Label: "Joined", Value: joined},
		{Label: "Last login", Value: lastLogin},
	}
}

func (r *UserResource) List(ctx context.Context) ([]table.Row, error) {
	users, err := r.svc.Query(ctx, &user.QueryFilter{Roles: []string{r.prefix}}, []core.DBOrdering{{Field: "created_at"}})
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", r.name)
	}
	rows := make([]table.Row, 0, len(users))
	for _, usr := range users {
		rows = append(rows, r.row(usr))
	}
	return rows, nil
}

// get returns the user id if it belongs to the resource.
func (r *UserResource) get(ctx context.Context, id string) (user.User, error) {
	usr, err := r.svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, ErrNotFound
		}
		return user.User{}, err
	}
	if !usr.RoleStartsWith(r.prefix) {
		return user.User{}, ErrNotFound
	}
	return usr, nil
}

func (r *UserResource) Get(ctx context.Context, id string) (table.Row, error) {
	usr, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.row(usr), nil
}

func (r *UserResource) Create(ctx context.Context, values map[string]string) (table.Row, error) {
	f := form.New(r.forms, r.Form(false)...)
	values = f.Values(values)
	if err := f.Validate(values).Err(); err != nil {
		return nil, err
	}

	role := r.roles[0]
	if v, ok := values["role"]; ok {
		role = v
	}
	if err := r.checkRoleGrant(ctx, role); err != nil {
		return nil, err
	}

	nu := user.NewUser{
		Name:            values["name"],
		Username:        values["username"],
		Email:           values["email"],
		Password:        values["password"],
		PasswordConfirm: values["password_confirm"],
		Roles:           []string{role},
	}
	if err := nu.Validate(r.validate, r.svc); err != nil {
		return nil, r.validationErr(err)
	}
	usr, err := r.svc.Create(ctx, nu)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", r.singular)
	}
	return r.row(usr), nil
}

func (r *UserResource) Update(ctx context.Context, id string, values map[string]string) (table.Row, error) {
	orig, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = r.checkManage(ctx, orig); err != nil {
		return nil, err
	}

	f := form.New(r.forms, r.Form(true)...)
	values = f.Values(values)
	if err = f.Validate(values).Err(); err != nil {
		return nil, err
	}

	uu := user.UpdateUser{
		Name:            values["name"],
		Username:        values["username"],
		Email:           values["email"],
		Password:        values["password"],
		PasswordConfirm: values["password_confirm"],
	}
	if v, ok := values["is_active"]; ok {
		active := (form.Field{Value: v}).Checked()
		uu.IsActive = &active
	}
	if role, ok := values["role"]; ok {
		if err = r.checkRoleGrant(ctx, role); err != nil {
			return nil, err
		}
		uu.Roles = r.replaceRole(orig.Roles, role)
	}

	if err = uu.Validate(orig, r.validate, r.svc); err != nil {
		return nil, r.validationErr(err)
	}
	usr, err := r.svc.Update(ctx, orig.ID, uu)
	if err != nil {
		return nil, errors.Wrapf(err, "updating %s", r.singular)
	}
	return r.row(usr), nil
}

// replaceRole swaps the roles of the resource scope for role, keeping the others.
func (r *UserResource) replaceRole(roles []string, role string) []string {
	out := make([]string, 0, len(roles))
	for _, rl := range roles {
		if !strings.HasPrefix(rl, r.prefix) {
			out = append(out, rl)
		}
	}
	return append(out, role)
}

func (r *UserResource) Delete(ctx context.Context, ids ...string) (int, error) {
	actor, hasActor := Actor(ctx)
	for _, id := range ids {
		usr, err := r.get(ctx, id)
		if err != nil {
			return 0, err
		}
		if hasActor && usr.ID == actor.ID {
			return 0, errors.Wrap(ErrPermissionDenied, "you cannot delete your own account")
		}
		if err = r.checkManage(ctx, usr); err != nil {
			return 0, err
		}
	}
	n, err := r.svc.Delete(ctx, ids...)
	if err != nil {
		return 0, errors.Wrapf(err, "deleting %s", r.name)
	}
	return n, nil
}

// checkRoleGrant rejects roles ranked above the actor's highest role.
func (r *UserResource) checkRoleGrant(ctx context.Context, role string) error {
	actor, ok := Actor(ctx)
	if !ok {
		return nil
	}
	if user.RolePriority(role) > user.MaxRolePriority(actor.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: roleAboveOwnText})
	}
	return nil
}

// checkManage rejects changes to users ranked above the actor.
func (r *UserResource) checkManage(ctx context.Context, usr user.User) error {
	actor, ok := Actor(ctx)
	if !ok || actor.ID == usr.ID {
		return nil
	}
	if user.MaxRolePriority(usr.Roles) > user.MaxRolePriority(actor.Roles) {
		return errors.Wrap(ErrPermissionDenied, "cannot manage user "+strconv.Quote(usr.Name))
	}
	return nil
}

func (r *UserResource) validationErr(err error) error {
	if vErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok {
		return form.Errors(core.FieldErrors(vErrs, r.translator)).Err()
	}
	return err
}
