package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	user := &Caller{ID: 2, Username: "bob", Role: models.RoleUser}
	admin := &Caller{ID: 1, Username: "root", Role: models.RoleAdmin}

	tests := []struct {
		name   string
		caller *Caller
		action Action
		res    Resource
		want   error
	}{
		{name: "anonymous reads products", caller: nil, action: ProductRead},
		{name: "anonymous registers", caller: nil, action: UserRegister},
		{name: "anonymous logs in", caller: nil, action: UserLogin},
		{name: "anonymous create", caller: nil, action: ProductCreate, want: domain.ErrUnauthenticated},
		{name: "user create", caller: user, action: ProductCreate},
		{name: "anonymous update", caller: nil, action: ProductUpdate, want: domain.ErrUnauthenticated},
		{name: "user update", caller: user, action: ProductUpdate, want: domain.ErrForbidden},
		{name: "admin update", caller: admin, action: ProductUpdate},
		{name: "user delete", caller: user, action: ProductDelete, want: domain.ErrForbidden},
		{name: "admin delete", caller: admin, action: ProductDelete},
		{name: "user low stock", caller: user, action: InventoryRead, want: domain.ErrForbidden},
		{name: "admin low stock", caller: admin, action: InventoryRead},
		{name: "user lists users", caller: user, action: UserList, want: domain.ErrForbidden},
		{name: "admin lists users", caller: admin, action: UserList},
		{name: "owner reads self", caller: user, action: UserRead, res: Resource{OwnerID: 2}},
		{name: "user reads other", caller: user, action: UserRead, res: Resource{OwnerID: 3}, want: domain.ErrForbidden},
		{name: "admin reads other", caller: admin, action: UserRead, res: Resource{OwnerID: 3}},
		{name: "anonymous reads user", caller: nil, action: UserRead, res: Resource{OwnerID: 3}, want: domain.ErrUnauthenticated},
		{name: "unknown action", caller: admin, action: Action(99), want: domain.ErrForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Authorize(tt.caller, tt.action, tt.res)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestActionString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "product.update", ProductUpdate.String())
	assert.Equal(t, "unknown", Action(99).String())
}
