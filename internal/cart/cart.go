// Package cart holds the shopping cart kept in the visitor's session.
package cart

import (
	"encoding/gob"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the cookie holding the cart and flash messages
	SessionName = "pizzeria_session"
	sessionKey  = "cart"
)

func init() {
	gob.Register(map[string]int{})
	gob.Register(Flash{})
}

// Cart maps a variant id (as string) to a quantity
type Cart map[string]int

// Add increases the quantity of a variant
func (c Cart) Add(variantID uint, qty int) {
	key := strconv.FormatUint(uint64(variantID), 10)
	c[key] += qty
}

// Set replaces the quantity of a variant
func (c Cart) Set(variantID uint, qty int) {
	c[strconv.FormatUint(uint64(variantID), 10)] = qty
}

// Quantity returns the quantity stored for a variant
func (c Cart) Quantity(variantID uint) int {
	return c[strconv.FormatUint(uint64(variantID), 10)]
}

// Clean returns a copy without zero or negative quantities
func (c Cart) Clean() Cart {
	clean := make(Cart, len(c))
	for k, v := range c {
		if v > 0 {
			clean[k] = v
		}
	}
	return clean
}

// VariantIDs returns the parsable variant ids in ascending order
func (c Cart) VariantIDs() []uint {
	ids := make([]uint, 0, len(c))
	for k := range c {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count is the total number of pizzas in the cart
func (c Cart) Count() int {
	n := 0
	for _, v := range c {
		if v > 0 {
			n += v
		}
	}
	return n
}

// Store loads and saves carts in a gorilla session
type Store struct {
	store sessions.Store
}

// NewStore creates a cookie backed cart store signed with secret
func NewStore(secret string, secure bool) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{store: cs}
}

func (s *Store) session(r *http.Request) (*sessions.Session, error) {
	sess, err := s.store.Get(r, SessionName)
	if sess == nil {
		return nil, err
	}
	// a tampered or stale cookie yields a fresh session
	return sess, nil
}

// Load returns the cart of the current visitor; a missing or unreadable cart is empty
func (s *Store) Load(r *http.Request) (Cart, error) {
	sess, err := s.session(r)
	if err != nil {
		return Cart{}, err
	}
	raw, ok := sess.Values[sessionKey].(map[string]int)
	if !ok {
		return Cart{}, nil
	}
	return Cart(raw).Clean(), nil
}

// Save writes the cleaned cart back to the session cookie
func (s *Store) Save(w http.ResponseWriter, r *http.Request, c Cart) error {
	sess, err := s.session(r)
	if err != nil {
		return err
	}
	sess.Values[sessionKey] = map[string]int(c.Clean())
	return sess.Save(r, w)
}

// Clear empties the cart
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r, Cart{})
}

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Level   string
	Message string
}

// Flash levels
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// AddFlash queues a message for the next page and saves the session
func (s *Store) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) error {
	sess, err := s.session(r)
	if err != nil {
		return err
	}
	sess.AddFlash(Flash{Level: level, Message: message})
	return sess.Save(r, w)
}

// Flashes pops the queued messages
func (s *Store) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := s.session(r)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			out = append(out, fl)
		}
	}
	_ = sess.Save(r, w)
	return out
}
