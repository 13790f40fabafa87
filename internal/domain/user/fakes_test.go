package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type memUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*User
}

func newMemUsers(seed ...*User) *memUsers {
	r := &memUsers{byID: map[uint]*User{}}
	for _, u := range seed {
		_ = r.Create(context.Background(), u)
	}
	return r
}

func (r *memUsers) find(match func(*User) bool) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memUsers) FindByID(ctx context.Context, id uint) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.EmailValue() == email })
}

func (r *memUsers) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return r.find(func(u *User) bool { return u.PhoneValue() == phone })
}

func (r *memUsers) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.find(func(u *User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *memUsers) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	_, err := r.find(func(u *User) bool { return u.EmailValue() == email && u.ID != exceptID })
	return err == nil, nil
}

func (r *memUsers) PhoneTaken(ctx context.Context, phone string, exceptID uint) (bool, error) {
	_, err := r.find(func(u *User) bool { return u.PhoneValue() == phone && u.ID != exceptID })
	return err == nil, nil
}

func (r *memUsers) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memUsers) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

type memOTPs struct {
	mu     sync.Mutex
	nextID uint
	codes  []OTP
}

func (r *memOTPs) Replace(ctx context.Context, otp *OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.codes {
		if r.codes[i].Phone == otp.Phone {
			r.codes[i].IsUsed = true
		}
	}
	r.nextID++
	otp.ID = r.nextID
	r.codes = append(r.codes, *otp)
	return nil
}

func (r *memOTPs) FindUsable(ctx context.Context, phone, code string, now time.Time) (*OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.codes {
		if o.Phone == phone && o.Code == code && o.Usable(now) {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrInvalidOTP
}

func (r *memOTPs) MarkUsed(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.codes {
		if r.codes[i].ID == id {
			r.codes[i].IsUsed = true
		}
	}
	return nil
}

type memAddresses struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]Address
}

func newMemAddresses() *memAddresses {
	return &memAddresses{rows: map[uint]Address{}}
}

func (r *memAddresses) ListByUser(ctx context.Context, userID uint) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Address
	for _, a := range r.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memAddresses) FindByID(ctx context.Context, userID, id uint) (*Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok || a.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return &a, nil
}

func (r *memAddresses) CountByUser(ctx context.Context, userID uint) (int64, error) {
	list, _ := r.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

func (r *memAddresses) clearDefaults(userID uint) {
	for id, a := range r.rows {
		if a.UserID == userID {
			a.IsDefault = false
			r.rows[id] = a
		}
	}
}

func (r *memAddresses) Create(ctx context.Context, address *Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if address.IsDefault {
		r.clearDefaults(address.UserID)
	}
	r.nextID++
	address.ID = r.nextID
	r.rows[address.ID] = *address
	return nil
}

func (r *memAddresses) Update(ctx context.Context, address *Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if address.IsDefault {
		r.clearDefaults(address.UserID)
	}
	r.rows[address.ID] = *address
	return nil
}

func (r *memAddresses) Delete(ctx context.Context, userID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memAddresses) SetDefault(ctx context.Context, userID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearDefaults(userID)
	a := r.rows[id]
	a.IsDefault = true
	r.rows[id] = a
	return nil
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendOTP(ctx context.Context, phone, code string) error {
	args := m.Called(ctx, phone, code)
	return args.Error(0)
}
