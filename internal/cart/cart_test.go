package cart

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartOperations(t *testing.T) {
	c := Cart{}
	c.Add(3, 2)
	c.Add(3, 1)
	c.Add(1, 4)
	c.Set(7, 0)
	c["junk"] = 5

	assert.Equal(t, 3, c.Quantity(3))
	assert.Equal(t, 4, c.Quantity(1))
	assert.Equal(t, []uint{1, 3, 7}, c.VariantIDs())

	clean := c.Clean()
	assert.NotContains(t, clean, "7")
	assert.Contains(t, c, "7", "Clean must not mutate the receiver")
	assert.Equal(t, 12, clean.Count())
}

// roundTrip copies the cookies set on w into a fresh request
func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range w.Result().Cookies() {
		r.AddCookie(ck)
	}
	return r
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := NewStore("test-session-secret", false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	c, err := store.Load(r)
	require.NoError(t, err)
	assert.Empty(t, c)

	c.Add(5, 2)
	c.Set(6, -1)
	w := httptest.NewRecorder()
	require.NoError(t, store.Save(w, r, c))

	loaded, err := store.Load(roundTrip(w))
	require.NoError(t, err)
	assert.Equal(t, Cart{"5": 2}, loaded)
}

func TestStoreIgnoresForeignCookie(t *testing.T) {
	store := NewStore("test-session-secret", false)
	other := NewStore("another-secret", false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	require.NoError(t, other.Save(w, r, Cart{"1": 1}))

	loaded, err := store.Load(roundTrip(w))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFlashes(t *testing.T) {
	store := NewStore("test-session-secret", false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	require.NoError(t, store.AddFlash(w, r, LevelSuccess, "Cart updated."))

	next := roundTrip(w)
	w2 := httptest.NewRecorder()
	flashes := store.Flashes(w2, next)
	require.Len(t, flashes, 1)
	assert.Equal(t, Flash{Level: LevelSuccess, Message: "Cart updated."}, flashes[0])

	// popped flashes are gone on the following request
	assert.Empty(t, store.Flashes(httptest.NewRecorder(), roundTrip(w2)))
}
