package rbac

// Role is the closed set of principal roles known to the backend.
type Role string

var (
	SuperAdmin   Role = "superadmin"
	ProductAdmin Role = "productadmin"
	ListingAdmin Role = "listingadmin"
	Lister       Role = "lister"
)

func (r Role) String() string {
	switch r {
	case SuperAdmin, ProductAdmin, ListingAdmin, Lister:
		return string(r)
	default:
		return ""
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.String() != ""
}

// IsAdmin reports whether r carries any admin capability.
func (r Role) IsAdmin() bool {
	switch r {
	case SuperAdmin, ProductAdmin, ListingAdmin:
		return true
	default:
		return false
	}
}

// Action is the capability set checked per resource.
type Action string

var (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionComplete Action = "complete"
)

// Resource names an addressable resource family.
type Resource string

var (
	ResourceUser       Resource = "users"
	ResourceTask       Resource = "tasks"
	ResourceAssignment Resource = "assignments"
	ResourceCatalog    Resource = "catalog"
	ResourceCompat     Resource = "compatibility-assignments"
	ResourceAnalytics  Resource = "analytics"
)

// permissions is the static per-operation allow-list. SuperAdmin is not
// listed anywhere: it is implicitly permitted everywhere.
var permissions = map[Resource]map[Action][]Role{
	ResourceUser: {
		ActionCreate: {},
		ActionRead:   {},
		ActionUpdate: {},
		ActionDelete: {},
	},
	ResourceTask: {
		ActionCreate: {ProductAdmin},
		ActionRead:   {ProductAdmin, ListingAdmin, Lister},
		ActionUpdate: {ProductAdmin, ListingAdmin},
		ActionDelete: {ProductAdmin, ListingAdmin},
	},
	ResourceAssignment: {
		ActionCreate:   {ListingAdmin},
		ActionRead:     {ProductAdmin, ListingAdmin, Lister},
		ActionUpdate:   {ListingAdmin},
		ActionDelete:   {ListingAdmin},
		ActionComplete: {ProductAdmin, ListingAdmin, Lister},
	},
	ResourceCatalog: {
		ActionCreate: {ProductAdmin, ListingAdmin},
		ActionRead:   {ProductAdmin, ListingAdmin, Lister},
		ActionDelete: {ProductAdmin, ListingAdmin},
	},
	ResourceCompat: {
		ActionCreate: {ListingAdmin},
		ActionRead:   {ProductAdmin, ListingAdmin, Lister},
		ActionDelete: {ListingAdmin},
	},
	ResourceAnalytics: {
		ActionRead: {ProductAdmin, ListingAdmin},
	},
}

// Allow reports whether role may perform action on resource. Lister-scoped
// ownership checks (a lister acting on its own assignment) are enforced by
// the owning service, not here.
func Allow(role Role, resource Resource, action Action) bool {
	if role == SuperAdmin {
		return true
	}
	actions, ok := permissions[resource]
	if !ok {
		return false
	}
	for _, allowed := range actions[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
