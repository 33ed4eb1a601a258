package handlers

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/internal/clientstate"
	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

// HeaderClientID names the client whose state a storefront request acts on.
const HeaderClientID = "X-Client-ID"

const localWorkspace = "workspace"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// StorefrontHandler exposes the per-client domain contexts over HTTP. Each
// client id gets its own namespace in the shared client store.
type StorefrontHandler struct {
	store clientstore.Store
	opts  []clientstate.Option
	log   zerolog.Logger
}

func NewStorefrontHandler(store clientstore.Store, log zerolog.Logger, opts ...clientstate.Option) *StorefrontHandler {
	return &StorefrontHandler{store: store, opts: opts, log: log}
}

// LoadWorkspace resolves the client from HeaderClientID and opens its
// workspace for the remaining handlers.
func (h *StorefrontHandler) LoadWorkspace(c *fiber.Ctx) error {
	clientID := strings.TrimSpace(c.Get(HeaderClientID))
	if clientID == "" {
		return utils.RespondFail(c, fiber.StatusBadRequest, HeaderClientID+" header is required")
	}
	if !clientIDPattern.MatchString(clientID) {
		return utils.RespondFail(c, fiber.StatusBadRequest, "Invalid "+HeaderClientID+" header")
	}

	ws, err := clientstate.Open(c.Context(), clientstore.WithPrefix(h.store, "client:"+clientID+":"), h.opts...)
	if err != nil {
		h.log.Error().Err(err).Str("client_id", clientID).Msg("open client workspace")
		return utils.RespondError(c)
	}

	c.Locals(localWorkspace, ws)
	return c.Next()
}

func workspace(c *fiber.Ctx) *clientstate.Workspace {
	ws, _ := c.Locals(localWorkspace).(*clientstate.Workspace)
	return ws
}

// Session

type storefrontLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type membershipRequest struct {
	Membership string `json:"membership"`
}

func (h *StorefrontHandler) GetSession(c *fiber.Ctx) error {
	ws := workspace(c)
	data := fiber.Map{"user": nil, "enrollments": ws.Session.Enrollments()}
	if user, ok := ws.Session.CurrentUser(); ok {
		data["user"] = user
	}
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: data})
}

func (h *StorefrontHandler) Register(c *fiber.Ctx) error {
	var req clientstate.RegisterInput
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	if err := ws.Session.Register(c.Context(), req); err != nil {
		return h.mapStorefrontError(c, err)
	}

	user, _ := ws.Session.CurrentUser()
	return utils.RespondOK(c, fiber.StatusCreated, utils.Envelope{
		Message: "Registration successful",
		Data:    fiber.Map{"user": user},
	})
}

func (h *StorefrontHandler) Login(c *fiber.Ctx) error {
	var req storefrontLoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	if err := ws.Session.Login(c.Context(), req.Email, req.Password); err != nil {
		return h.mapStorefrontError(c, err)
	}

	user, _ := ws.Session.CurrentUser()
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: fiber.Map{"user": user}})
}

func (h *StorefrontHandler) Logout(c *fiber.Ctx) error {
	if err := workspace(c).Session.Logout(c.Context()); err != nil {
		return h.mapStorefrontError(c, err)
	}
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Message: "Logged out"})
}

func (h *StorefrontHandler) SetMembership(c *fiber.Ctx) error {
	var req membershipRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	if err := ws.Session.SetMembership(c.Context(), req.Membership); err != nil {
		return h.mapStorefrontError(c, err)
	}

	user, _ := ws.Session.CurrentUser()
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: fiber.Map{"user": user}})
}

// ListUsers is the back-office roster: members of this client filtered by
// ?membership=all|free|premium and ?search=, with plan counts.
func (h *StorefrontHandler) ListUsers(c *fiber.Ctx) error {
	roster, err := workspace(c).Session.Roster(clientstate.RosterQuery{
		Membership: c.Query("membership"),
		Search:     c.Query("search"),
	})
	if err != nil {
		return h.mapStorefrontError(c, err)
	}

	count := len(roster.Users)
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Count: &count, Data: roster})
}

// Enrollments

type enrollRequest struct {
	ProgramID int64 `json:"programId"`
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

func (h *StorefrontHandler) ListEnrollments(c *fiber.Ctx) error {
	return utils.RespondList(c, workspace(c).Session.Enrollments())
}

func (h *StorefrontHandler) Enroll(c *fiber.Ctx) error {
	var req enrollRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	program, ok := ws.Programs.Get(req.ProgramID)
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Program not found")
	}

	added, err := ws.Session.Enroll(c.Context(), program)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	if !added {
		return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{
			Message: "Already enrolled in this program",
			Data:    ws.Session.Enrollments(),
		})
	}
	return utils.RespondOK(c, fiber.StatusCreated, utils.Envelope{Data: ws.Session.Enrollments()})
}

func (h *StorefrontHandler) UpdateProgress(c *fiber.Ctx) error {
	programID, ok := parseID(c, "programId")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Enrollment not found")
	}

	var req progressRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}
	if req.Progress == nil {
		return utils.RespondFail(c, fiber.StatusBadRequest, "progress is required")
	}

	ws := workspace(c)
	if err := ws.Session.UpdateProgress(c.Context(), programID, *req.Progress); err != nil {
		return h.mapStorefrontError(c, err)
	}
	return utils.RespondList(c, ws.Session.Enrollments())
}

func (h *StorefrontHandler) Unenroll(c *fiber.Ctx) error {
	programID, ok := parseID(c, "programId")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Enrollment not found")
	}

	ws := workspace(c)
	if err := ws.Session.Unenroll(c.Context(), programID); err != nil {
		return h.mapStorefrontError(c, err)
	}
	return utils.RespondList(c, ws.Session.Enrollments())
}

// Programs

func (h *StorefrontHandler) ListPrograms(c *fiber.Ctx) error {
	return utils.RespondList(c, workspace(c).Programs.List(c.Query("category")))
}

func (h *StorefrontHandler) CreateProgram(c *fiber.Ctx) error {
	var draft clientstate.ProgramDraft
	if err := decodeJSON(c, &draft); err != nil {
		return respondInvalidBody(c, err)
	}

	program, err := workspace(c).Programs.Create(c.Context(), draft)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	return utils.RespondOK(c, fiber.StatusCreated, utils.Envelope{Data: program})
}

func (h *StorefrontHandler) UpdateProgram(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Program not found")
	}

	var patch clientstate.ProgramPatch
	if err := decodeJSON(c, &patch); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	updated, err := ws.Programs.Update(c.Context(), id, patch)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	if !updated {
		return utils.RespondFail(c, fiber.StatusNotFound, "Program not found")
	}

	program, _ := ws.Programs.Get(id)
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: program})
}

func (h *StorefrontHandler) DeleteProgram(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Program not found")
	}

	deleted, err := workspace(c).Programs.Delete(c.Context(), id)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	if !deleted {
		return utils.RespondFail(c, fiber.StatusNotFound, "Program not found")
	}
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Message: "Program deleted"})
}

// Supplements

func (h *StorefrontHandler) ListSupplements(c *fiber.Ctx) error {
	return utils.RespondList(c, workspace(c).Supplements.List())
}

func (h *StorefrontHandler) CreateSupplement(c *fiber.Ctx) error {
	var draft clientstate.SupplementDraft
	if err := decodeJSON(c, &draft); err != nil {
		return respondInvalidBody(c, err)
	}

	supplement, err := workspace(c).Supplements.Create(c.Context(), draft)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	return utils.RespondOK(c, fiber.StatusCreated, utils.Envelope{Data: supplement})
}

func (h *StorefrontHandler) UpdateSupplement(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Supplement not found")
	}

	var patch clientstate.SupplementPatch
	if err := decodeJSON(c, &patch); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	updated, err := ws.Supplements.Update(c.Context(), id, patch)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	if !updated {
		return utils.RespondFail(c, fiber.StatusNotFound, "Supplement not found")
	}

	supplement, _ := ws.Supplements.Get(id)
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: supplement})
}

func (h *StorefrontHandler) DeleteSupplement(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Supplement not found")
	}

	deleted, err := workspace(c).Supplements.Delete(c.Context(), id)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	if !deleted {
		return utils.RespondFail(c, fiber.StatusNotFound, "Supplement not found")
	}
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Message: "Supplement deleted"})
}

// Cart

type addToCartRequest struct {
	SupplementID int64 `json:"supplementId"`
}

func (h *StorefrontHandler) GetCart(c *fiber.Ctx) error {
	return respondCart(c, workspace(c), fiber.StatusOK, "")
}

func (h *StorefrontHandler) AddToCart(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	ws := workspace(c)
	supplement, ok := ws.Supplements.Get(req.SupplementID)
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Supplement not found")
	}

	added, err := ws.Cart.Add(c.Context(), supplement)
	if err != nil {
		return h.mapStorefrontError(c, err)
	}
	if !added {
		return respondCart(c, ws, fiber.StatusOK, "Already in cart")
	}
	return respondCart(c, ws, fiber.StatusCreated, "")
}

func (h *StorefrontHandler) RemoveFromCart(c *fiber.Ctx) error {
	return h.changeCart(c, (*clientstate.CartService).Remove)
}

func (h *StorefrontHandler) IncrementCartItem(c *fiber.Ctx) error {
	return h.changeCart(c, (*clientstate.CartService).Increment)
}

func (h *StorefrontHandler) DecrementCartItem(c *fiber.Ctx) error {
	return h.changeCart(c, (*clientstate.CartService).Decrement)
}

type cartChange func(*clientstate.CartService, context.Context, int64) error

func (h *StorefrontHandler) changeCart(c *fiber.Ctx, change cartChange) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Cart item not found")
	}

	ws := workspace(c)
	if err := change(ws.Cart, c.Context(), id); err != nil {
		return h.mapStorefrontError(c, err)
	}
	return respondCart(c, ws, fiber.StatusOK, "")
}

type cartView struct {
	Items    []models.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

// respondCart answers with the cart lines and subtotal; count is the total quantity.
func respondCart(c *fiber.Ctx, ws *clientstate.Workspace, code int, message string) error {
	count := ws.Cart.TotalCount()
	return utils.RespondOK(c, code, utils.Envelope{
		Message: message,
		Count:   &count,
		Data:    cartView{Items: ws.Cart.Items(), Subtotal: ws.Cart.Subtotal()},
	})
}

func (h *StorefrontHandler) mapStorefrontError(c *fiber.Ctx, err error) error {
	if handled, respErr := respondValidation(c, err); handled {
		return respErr
	}

	switch {
	case errors.Is(err, clientstate.ErrEmailTaken):
		return utils.RespondFail(c, fiber.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, clientstate.ErrInvalidCredentials):
		return utils.RespondFail(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, clientstate.ErrNotSignedIn):
		return utils.RespondFail(c, fiber.StatusUnauthorized, "You must be logged in")
	case errors.Is(err, clientstate.ErrInvalidRosterFilter):
		return utils.RespondFail(c, fiber.StatusBadRequest, "Membership filter must be all, free or premium")
	case errors.Is(err, clientstate.ErrInvalidMembership):
		return utils.RespondFail(c, fiber.StatusBadRequest, "Membership must be Free Plan or Premium Plan")
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("storefront request failed")
		return utils.RespondError(c)
	}
}
