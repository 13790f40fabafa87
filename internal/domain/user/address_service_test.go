package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
)

func addressRequest(name string, isDefault bool) *AddressRequest {
	return &AddressRequest{
		Type:      AddressHome,
		Name:      name,
		Line1:     "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
		IsDefault: isDefault,
	}
}

func defaults(addresses []Address) []string {
	var names []string
	for _, a := range addresses {
		if a.IsDefault {
			names = append(names, a.Name)
		}
	}
	return names
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	svc := NewAddressService(newMemAddresses(), logger.Discard())

	list, err := svc.CreateAddress(context.Background(), 1, addressRequest("Home", false))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, "India", list[0].Country)
}

func TestSingleDefaultInvariant(t *testing.T) {
	svc := NewAddressService(newMemAddresses(), logger.Discard())
	ctx := context.Background()

	_, err := svc.CreateAddress(ctx, 1, addressRequest("Home", false))
	require.NoError(t, err)
	list, err := svc.CreateAddress(ctx, 1, addressRequest("Office", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"Home"}, defaults(list))

	list, err = svc.CreateAddress(ctx, 1, addressRequest("Parents", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Parents"}, defaults(list))

	var office Address
	for _, a := range list {
		if a.Name == "Office" {
			office = a
		}
	}

	list, err = svc.SetDefaultAddress(ctx, 1, office.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Office"}, defaults(list))

	list, err = svc.UpdateAddress(ctx, 1, office.ID, addressRequest("Office 2", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"Office 2"}, defaults(list))

	// another user's defaults are untouched
	other, err := svc.CreateAddress(ctx, 2, addressRequest("Elsewhere", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Elsewhere"}, defaults(other))
	list, err = svc.GetUserAddresses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Office 2"}, defaults(list))
}

func TestAddressOwnership(t *testing.T) {
	svc := NewAddressService(newMemAddresses(), logger.Discard())
	ctx := context.Background()

	list, err := svc.CreateAddress(ctx, 1, addressRequest("Home", false))
	require.NoError(t, err)
	id := list[0].ID

	_, err = svc.UpdateAddress(ctx, 2, id, addressRequest("Mine now", false))
	assert.ErrorIs(t, err, ErrAddressNotFound)
	_, err = svc.DeleteAddress(ctx, 2, id)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	_, err = svc.SetDefaultAddress(ctx, 2, id)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	list, err = svc.DeleteAddress(ctx, 1, id)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}
