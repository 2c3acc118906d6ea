package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/service"
)

// HeaderCache reports whether a read was served from the cache.
const HeaderCache = "X-Cache"

func markCache(c echo.Context, hit bool) {
	v := "MISS"
	if hit {
		v = "HIT"
	}
	c.Response().Header().Set(HeaderCache, v)
}

type message struct {
	Message string `json:"message"`
}

type authHandler struct {
	auth *service.Auth
}

type sessionResponse struct {
	Success      bool        `json:"success,omitempty"`
	Message      string      `json:"message"`
	User         userPayload `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

type userPayload struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func newSessionResponse(msg string, s service.Session) sessionResponse {
	return sessionResponse{
		Message:      msg,
		User:         userPayload{ID: s.User.ID, Name: s.User.Name, Email: s.User.Email},
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func (h *authHandler) signup(c echo.Context) error {
	var in model.SignupInput
	if err := c.Bind(&in); err != nil {
		return badRequest("Invalid request body")
	}

	s, err := h.auth.Signup(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newSessionResponse("User created successfully", s))
}

func (h *authHandler) login(c echo.Context) error {
	var in model.LoginInput
	if err := c.Bind(&in); err != nil {
		return badRequest("Invalid request body")
	}

	s, err := h.auth.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse("Login successful", s))
}

// refresh reads the refresh token from the Authorization header.
func (h *authHandler) refresh(c echo.Context) error {
	token, _ := bearer(c)

	s, err := h.auth.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}
	resp := newSessionResponse("Token refreshed successfully", s)
	resp.Success = true
	return c.JSON(http.StatusOK, resp)
}

type propertyHandler struct {
	properties *service.Properties
}

type propertyResponse struct {
	Message string         `json:"message,omitempty"`
	Data    model.Property `json:"data"`
}

func (h *propertyHandler) search(c echo.Context) error {
	res, hit, err := h.properties.Search(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	markCache(c, hit)
	return c.JSON(http.StatusOK, res)
}

func (h *propertyHandler) get(c echo.Context) error {
	p, hit, err := h.properties.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	markCache(c, hit)
	return c.JSON(http.StatusOK, propertyResponse{Data: p})
}

func (h *propertyHandler) create(c echo.Context) error {
	var in model.PropertyInput
	if err := c.Bind(&in); err != nil {
		return badRequest("Invalid request body")
	}

	p, err := h.properties.Create(c.Request().Context(), principal(c).UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, propertyResponse{Message: "Property created successfully", Data: p})
}

func (h *propertyHandler) update(c echo.Context) error {
	var in model.PropertyInput
	if err := c.Bind(&in); err != nil {
		return badRequest("Invalid request body")
	}

	p, err := h.properties.Update(c.Request().Context(), principal(c).UserID, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, propertyResponse{Message: "Property updated successfully", Data: p})
}

func (h *propertyHandler) delete(c echo.Context) error {
	if err := h.properties.Delete(c.Request().Context(), principal(c).UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Property deleted successfully"})
}

type favouriteHandler struct {
	favourites *service.Favourites
}

type favouriteResponse struct {
	Message   string          `json:"message"`
	Favourite model.Favourite `json:"favourite"`
}

type favouriteListResponse struct {
	Message string `json:"message"`
	model.FavouriteList
}

func (h *favouriteHandler) add(c echo.Context) error {
	f, err := h.favourites.Add(c.Request().Context(), principal(c).UserID, c.Param("propertyId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, favouriteResponse{Message: "Added to favourites successfully", Favourite: f})
}

func (h *favouriteHandler) list(c echo.Context) error {
	list, hit, err := h.favourites.List(c.Request().Context(), principal(c).UserID)
	if err != nil {
		return err
	}
	markCache(c, hit)
	return c.JSON(http.StatusOK, favouriteListResponse{Message: "Favourites retrieved successfully", FavouriteList: list})
}

func (h *favouriteHandler) get(c echo.Context) error {
	f, hit, err := h.favourites.Get(c.Request().Context(), principal(c).UserID, c.Param("id"))
	if err != nil {
		return err
	}
	markCache(c, hit)
	return c.JSON(http.StatusOK, favouriteResponse{Message: "Favourite retrieved successfully", Favourite: f})
}

func (h *favouriteHandler) update(c echo.Context) error {
	var body struct {
		PropertyID string `json:"propertyId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}

	f, err := h.favourites.Update(c.Request().Context(), principal(c).UserID, c.Param("id"), body.PropertyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favouriteResponse{Message: "Favourite updated successfully", Favourite: f})
}

func (h *favouriteHandler) remove(c echo.Context) error {
	if err := h.favourites.Remove(c.Request().Context(), principal(c).UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Favourite removed successfully"})
}

type recommendationHandler struct {
	recommendations *service.Recommendations
}

type recommendResponse struct {
	RecommendationID primitive.ObjectID `json:"recommendationId"`
	RecommendedTo    recipient          `json:"recommendedTo"`
}

type recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *recommendationHandler) searchUsers(c echo.Context) error {
	users, hit, err := h.recommendations.SearchUsers(c.Request().Context(), c.QueryParam("searchEmail"))
	if err != nil {
		return err
	}
	markCache(c, hit)
	return c.JSON(http.StatusOK, map[string][]model.UserSummary{"users": users})
}

func (h *recommendationHandler) recommend(c echo.Context) error {
	var body struct {
		Email     string `json:"email"`
		FeatureID string `json:"featureId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}

	rec, to, err := h.recommendations.Recommend(c.Request().Context(), principal(c).UserID, body.Email, body.FeatureID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, recommendResponse{
		RecommendationID: rec.ID,
		RecommendedTo:    recipient{Name: to.Name, Email: to.Email},
	})
}

func (h *recommendationHandler) list(c echo.Context) error {
	list, hit, err := h.recommendations.List(c.Request().Context(), principal(c).UserID)
	if err != nil {
		return err
	}
	markCache(c, hit)
	return c.JSON(http.StatusOK, list)
}
