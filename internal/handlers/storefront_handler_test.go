package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/internal/clientstate"
	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/models"
)

func newStorefrontTestApp(store clientstore.Store) *fiber.App {
	handler := NewStorefrontHandler(store, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/app")
	ws := handler.LoadWorkspace
	group.Get("/session", ws, handler.GetSession)
	group.Post("/register", ws, handler.Register)
	group.Post("/login", ws, handler.Login)
	group.Post("/logout", ws, handler.Logout)
	group.Put("/membership", ws, handler.SetMembership)
	group.Get("/users", ws, handler.ListUsers)
	group.Get("/enrollments", ws, handler.ListEnrollments)
	group.Post("/enrollments", ws, handler.Enroll)
	group.Put("/enrollments/:programId", ws, handler.UpdateProgress)
	group.Delete("/enrollments/:programId", ws, handler.Unenroll)
	group.Get("/programs", ws, handler.ListPrograms)
	group.Post("/programs", ws, handler.CreateProgram)
	group.Put("/programs/:id", ws, handler.UpdateProgram)
	group.Delete("/programs/:id", ws, handler.DeleteProgram)
	group.Get("/supplements", ws, handler.ListSupplements)
	group.Post("/supplements", ws, handler.CreateSupplement)
	group.Put("/supplements/:id", ws, handler.UpdateSupplement)
	group.Delete("/supplements/:id", ws, handler.DeleteSupplement)
	group.Get("/cart", ws, handler.GetCart)
	group.Post("/cart", ws, handler.AddToCart)
	group.Delete("/cart/:id", ws, handler.RemoveFromCart)
	group.Post("/cart/:id/increment", ws, handler.IncrementCartItem)
	group.Post("/cart/:id/decrement", ws, handler.DecrementCartItem)
	return app
}

type storefrontResponse[T any] struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int   `json:"count"`
	Data    T      `json:"data"`
}

func clientRequest(t *testing.T, app *fiber.App, clientID, method, path, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if clientID != "" {
		req.Header.Set(HeaderClientID, clientID)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	return resp
}

func decodeInto[T any](t *testing.T, resp *http.Response) storefrontResponse[T] {
	t.Helper()
	defer resp.Body.Close()

	var out storefrontResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestStorefrontRequiresClientID(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	resp := clientRequest(t, app, "", http.MethodGet, "/api/app/programs", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	bad := clientRequest(t, app, "../etc", http.MethodGet, "/api/app/programs", "")
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", bad.StatusCode)
	}
}

func TestStorefrontRegisterLoginFlow(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	resp := clientRequest(t, app, "tab-1", http.MethodPost, "/api/app/register",
		`{"name":"Ana","email":"ana@x.io","password":"pw1"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	registered := decodeInto[map[string]models.SessionUser](t, resp)
	if registered.Data["user"].Membership != models.MembershipFreePlan {
		t.Fatalf("unexpected user %+v", registered.Data["user"])
	}

	dup := clientRequest(t, app, "tab-1", http.MethodPost, "/api/app/register",
		`{"name":"Ana","email":"ana@x.io","password":"other"}`)
	dup.Body.Close()
	if dup.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", dup.StatusCode)
	}

	logout := clientRequest(t, app, "tab-1", http.MethodPost, "/api/app/logout", "")
	logout.Body.Close()

	bad := clientRequest(t, app, "tab-1", http.MethodPost, "/api/app/login", `{"email":"ana@x.io","password":"nope"}`)
	bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", bad.StatusCode)
	}

	ok := clientRequest(t, app, "tab-1", http.MethodPost, "/api/app/login", `{"email":"ana@x.io","password":"pw1"}`)
	ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", ok.StatusCode)
	}

	premium := clientRequest(t, app, "tab-1", http.MethodPut, "/api/app/membership", `{"membership":"Premium Plan"}`)
	upgraded := decodeInto[map[string]models.SessionUser](t, premium)
	if upgraded.Data["user"].Membership != models.MembershipPremiumPlan {
		t.Fatalf("expected premium, got %+v", upgraded.Data["user"])
	}
}

func TestStorefrontClientsAreIsolated(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	resp := clientRequest(t, app, "tab-1", http.MethodPost, "/api/app/register",
		`{"name":"Ana","email":"ana@x.io","password":"pw1"}`)
	resp.Body.Close()

	other := clientRequest(t, app, "tab-2", http.MethodGet, "/api/app/session", "")
	session := decodeInto[map[string]any](t, other)
	if session.Data["user"] != nil {
		t.Fatalf("expected no session for another client, got %v", session.Data["user"])
	}
}

func TestStorefrontEnrollmentFlow(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	first := clientRequest(t, app, "c1", http.MethodPost, "/api/app/enrollments", `{"programId":1}`)
	first.Body.Close()
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.StatusCode)
	}
	second := clientRequest(t, app, "c1", http.MethodPost, "/api/app/enrollments", `{"programId":1}`)
	second.Body.Close()
	if second.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for repeat enroll, got %d", second.StatusCode)
	}

	missing := clientRequest(t, app, "c1", http.MethodPost, "/api/app/enrollments", `{"programId":404}`)
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}

	progress := clientRequest(t, app, "c1", http.MethodPut, "/api/app/enrollments/1", `{"progress":50}`)
	updated := decodeInto[[]models.Enrollment](t, progress)
	if len(updated.Data) != 1 || updated.Data[0].Workouts != "10/20 completed" {
		t.Fatalf("unexpected enrollments %+v", updated.Data)
	}

	removed := clientRequest(t, app, "c1", http.MethodDelete, "/api/app/enrollments/1", "")
	after := decodeInto[[]models.Enrollment](t, removed)
	if len(after.Data) != 0 {
		t.Fatalf("expected no enrollments, got %+v", after.Data)
	}
}

func TestStorefrontProgramCatalog(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	list := decodeInto[[]models.Program](t, clientRequest(t, app, "c1", http.MethodGet, "/api/app/programs?category=advanced", ""))
	if len(list.Data) != 1 || list.Data[0].Category != "advanced" {
		t.Fatalf("unexpected filtered list %+v", list.Data)
	}

	created := clientRequest(t, app, "c1", http.MethodPost, "/api/app/programs",
		`{"title":"X","category":"beginner","duration":"4 weeks","intensity":"Low","description":"d"}`)
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.StatusCode)
	}
	program := decodeInto[models.Program](t, created)
	if program.Data.Image == "" {
		t.Fatalf("expected default image")
	}

	unknown := clientRequest(t, app, "c1", http.MethodPost, "/api/app/programs",
		`{"title":"X","category":"beginner","duration":"4 weeks","intensity":"Low","description":"d","level":9}`)
	unknown.Body.Close()
	if unknown.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", unknown.StatusCode)
	}

	invalid := clientRequest(t, app, "c1", http.MethodPost, "/api/app/programs", `{"title":"X"}`)
	invalid.Body.Close()
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", invalid.StatusCode)
	}

	notFound := clientRequest(t, app, "c1", http.MethodPut, "/api/app/programs/999", `{"title":"Y"}`)
	notFound.Body.Close()
	if notFound.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", notFound.StatusCode)
	}

	deleted := clientRequest(t, app, "c1", http.MethodDelete, "/api/app/programs/2", "")
	deleted.Body.Close()
	if deleted.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", deleted.StatusCode)
	}
}

func TestStorefrontCart(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	added := clientRequest(t, app, "c1", http.MethodPost, "/api/app/cart", `{"supplementId":1}`)
	added.Body.Close()
	if added.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", added.StatusCode)
	}
	clientRequest(t, app, "c1", http.MethodPost, "/api/app/cart", `{"supplementId":2}`).Body.Close()

	inc := decodeInto[cartView](t, clientRequest(t, app, "c1", http.MethodPost, "/api/app/cart/1/increment", ""))
	if inc.Count == nil || *inc.Count != 3 {
		t.Fatalf("expected count 3, got %+v", inc.Count)
	}
	if inc.Data.Subtotal != 94.97 {
		t.Fatalf("expected subtotal 94.97, got %v", inc.Data.Subtotal)
	}

	for range 3 {
		clientRequest(t, app, "c1", http.MethodPost, "/api/app/cart/1/decrement", "").Body.Close()
	}
	cart := decodeInto[cartView](t, clientRequest(t, app, "c1", http.MethodGet, "/api/app/cart", ""))
	if len(cart.Data.Items) != 2 || cart.Data.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity floored at 1, got %+v", cart.Data.Items)
	}

	clientRequest(t, app, "c1", http.MethodDelete, "/api/app/cart/2", "").Body.Close()
	emptied := decodeInto[cartView](t, clientRequest(t, app, "c1", http.MethodDelete, "/api/app/cart/1", ""))
	if len(emptied.Data.Items) != 0 || *emptied.Count != 0 || emptied.Data.Subtotal != 0 {
		t.Fatalf("expected empty cart, got %+v", emptied.Data)
	}
}

func TestStorefrontSupplementCatalog(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "create", method: http.MethodPost, path: "/api/app/supplements", body: `{"name":"BCAA","price":19.5,"category":"Recovery","rating":4.1,"description":"d"}`, status: http.StatusCreated},
		{name: "create invalid rating", method: http.MethodPost, path: "/api/app/supplements", body: `{"name":"BCAA","price":1,"rating":9}`, status: http.StatusBadRequest},
		{name: "update", method: http.MethodPut, path: "/api/app/supplements/1", body: `{"price":29.99}`, status: http.StatusOK},
		{name: "update negative price", method: http.MethodPut, path: "/api/app/supplements/1", body: `{"price":-1}`, status: http.StatusBadRequest},
		{name: "update unknown field", method: http.MethodPut, path: "/api/app/supplements/1", body: `{"stock":3}`, status: http.StatusBadRequest},
		{name: "update missing", method: http.MethodPut, path: "/api/app/supplements/999", body: `{"price":1}`, status: http.StatusNotFound},
		{name: "update non-numeric id", method: http.MethodPut, path: "/api/app/supplements/abc", body: `{"price":1}`, status: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: "/api/app/supplements/2", status: http.StatusOK},
		{name: "delete again", method: http.MethodDelete, path: "/api/app/supplements/2", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		resp := clientRequest(t, app, "c1", tt.method, tt.path, tt.body)
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.status, resp.StatusCode)
		}
	}

	list := decodeInto[[]models.Supplement](t, clientRequest(t, app, "c1", http.MethodGet, "/api/app/supplements", ""))
	if len(list.Data) != 2 {
		t.Fatalf("expected two supplements, got %+v", list.Data)
	}
	if list.Data[0].ID != 1 || list.Data[0].Price != 29.99 {
		t.Fatalf("expected updated price on supplement 1, got %+v", list.Data[0])
	}
}

func TestStorefrontUserRoster(t *testing.T) {
	app := newStorefrontTestApp(clientstore.NewMemoryStore())

	clientRequest(t, app, "shop", http.MethodPost, "/api/app/register",
		`{"name":"Ana","email":"ana@x.io","password":"pw1"}`).Body.Close()
	clientRequest(t, app, "shop", http.MethodPost, "/api/app/register",
		`{"name":"Bo","email":"bo@x.io","password":"pw2"}`).Body.Close()
	clientRequest(t, app, "shop", http.MethodPut, "/api/app/membership", `{"membership":"Premium Plan"}`).Body.Close()

	resp := clientRequest(t, app, "shop", http.MethodGet, "/api/app/users", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(body), "password") {
		t.Fatalf("roster leaked passwords: %s", body)
	}

	var all storefrontResponse[clientstate.UserRoster]
	if err := json.Unmarshal(body, &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if all.Data.Total != 2 || all.Data.Free != 1 || all.Data.Premium != 1 || *all.Count != 2 {
		t.Fatalf("unexpected roster %+v", all.Data)
	}

	premium := decodeInto[clientstate.UserRoster](t, clientRequest(t, app, "shop", http.MethodGet, "/api/app/users?membership=premium", ""))
	if len(premium.Data.Users) != 1 || premium.Data.Users[0].Email != "bo@x.io" {
		t.Fatalf("unexpected premium roster %+v", premium.Data.Users)
	}

	bad := clientRequest(t, app, "shop", http.MethodGet, "/api/app/users?membership=gold", "")
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter, got %d", bad.StatusCode)
	}
}
