// Package policy decides whether a caller may perform an action.
// It never touches storage or HTTP.
package policy

import (
	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

type Action int

const (
	ProductRead Action = iota
	ProductCreate
	ProductUpdate
	ProductDelete
	InventoryRead
	UserRegister
	UserLogin
	UserRead
	UserList
)

func (a Action) String() string {
	switch a {
	case ProductRead:
		return "product.read"
	case ProductCreate:
		return "product.create"
	case ProductUpdate:
		return "product.update"
	case ProductDelete:
		return "product.delete"
	case InventoryRead:
		return "inventory.read"
	case UserRegister:
		return "user.register"
	case UserLogin:
		return "user.login"
	case UserRead:
		return "user.read"
	case UserList:
		return "user.list"
	default:
		return "unknown"
	}
}

// Caller is nil for anonymous requests.
type Caller struct {
	ID       uint
	Username string
	Role     string
}

func (c *Caller) IsAdmin() bool { return c != nil && c.Role == models.RoleAdmin }

// Resource identifies the subject of an action. OwnerID is zero when the action
// does not target a single owned record.
type Resource struct {
	OwnerID uint
}

type rule int

const (
	anyone rule = iota
	authenticated
	adminOnly
	ownerOrAdmin
)

var rules = map[Action]rule{
	ProductRead:   anyone,
	UserRegister:  anyone,
	UserLogin:     anyone,
	ProductCreate: authenticated,
	ProductUpdate: adminOnly,
	ProductDelete: adminOnly,
	InventoryRead: adminOnly,
	UserList:      adminOnly,
	UserRead:      ownerOrAdmin,
}

// Authorize returns nil, domain.ErrUnauthenticated or domain.ErrForbidden.
// Unknown actions are denied.
func Authorize(caller *Caller, action Action, res Resource) error {
	r, ok := rules[action]
	if !ok {
		if caller == nil {
			return domain.ErrUnauthenticated
		}
		return domain.ErrForbidden
	}
	if r == anyone {
		return nil
	}
	if caller == nil {
		return domain.ErrUnauthenticated
	}

	switch r {
	case authenticated:
		return nil
	case adminOnly:
		if caller.IsAdmin() {
			return nil
		}
	case ownerOrAdmin:
		if caller.IsAdmin() || (res.OwnerID != 0 && caller.ID == res.OwnerID) {
			return nil
		}
	}
	return domain.ErrForbidden
}
