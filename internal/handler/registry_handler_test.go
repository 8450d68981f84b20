package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"event-registry/internal/auth"
	"event-registry/internal/model"
	"event-registry/internal/service/mocks"
	apperrors "event-registry/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func comiconRequest() model.CreateEventRequest {
	return model.CreateEventRequest{
		EventName:         "Comicon",
		EventDate:         1726780800,
		Speakers:          []string{"Kevin", "Jordan"},
		EventLocationName: "The zone",
		Duration:          259200,
	}
}

func TestGetRegistry(t *testing.T) {
	mockService := mocks.NewRegistryServiceMock()
	router := setupRouter(mockService, nil)

	collection := model.MustParseAddress("0x2C0457F82B57148e8363b4589bb3294b23AE7625")
	mockService.On("Owner").Return(owner)
	mockService.On("RequiredMembershipCollection").Return(collection)
	mockService.On("EventCount", mock.Anything).Return(uint64(3), nil).Once()

	w := serve(router, createJSONHTTPRequest("GET", "/api/v1/registry", nil, ""))

	require.Equal(t, http.StatusOK, w.Code)
	var body model.RegistryInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, owner, body.Owner)
	assert.Equal(t, collection, body.RequiredMembershipCollection)
	assert.Equal(t, uint64(3), body.EventCount)
	mockService.AssertExpectations(t)
}

func TestCreateEvent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("Owner").Return(owner)
		mockService.On("CreateEvent", mock.Anything, owner, comiconRequest().Params()).Return(uint64(1), nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events", comiconRequest(), owner))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":1}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - missing caller", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events", comiconRequest(), ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrMissingIdentity.Error(), decodeError(w))
		mockService.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - invalid JSON", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("Owner").Return(owner)

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events", InvalidJSON, owner))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - ErrNotOwner before the body is parsed", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("Owner").Return(owner)

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events", InvalidJSON, attendee))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperrors.ErrNotOwner.Error(), decodeError(w))
		mockService.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - ErrNotOwner with a valid body", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("Owner").Return(owner)

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events", comiconRequest(), attendee))

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Failed - ErrEmptyTitle", apperrors.ErrEmptyTitle, http.StatusBadRequest},
		{"Failed - ErrEmptyLocation", apperrors.ErrEmptyLocation, http.StatusBadRequest},
		{"Failed - ErrDateNotFuture", apperrors.ErrDateNotFuture, http.StatusBadRequest},
		{"Failed - ErrInvalidDuration", apperrors.ErrInvalidDuration, http.StatusBadRequest},
		{"Failed - unexpected", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewRegistryServiceMock()
			router := setupRouter(mockService, nil)

			mockService.On("Owner").Return(owner)
			mockService.On("CreateEvent", mock.Anything, owner, mock.Anything).Return(uint64(0), tc.err).Once()

			w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events", comiconRequest(), owner))

			assert.Equal(t, tc.status, w.Code)
			if tc.status != http.StatusInternalServerError {
				assert.Equal(t, tc.err.Error(), decodeError(w))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetEvent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		event := &model.Event{
			ID:                1,
			EventName:         "Comicon",
			EventDate:         1726780800,
			Speakers:          []string{"Kevin", "Jordan"},
			EventLocationName: "The zone",
			Duration:          259200,
			EndDate:           1726358400 + 259200,
		}
		mockService.On("EventByID", mock.Anything, uint64(1)).Return(event, nil).Once()
		mockService.On("WindowState", mock.Anything, uint64(1)).Return(model.WindowOpen, nil).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/events/1", nil, ""))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Comicon", body["event_name"])
		assert.Equal(t, "open", body["window"])
		assert.EqualValues(t, 1, body["id"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrEventNotFound", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("EventByID", mock.Anything, uint64(9)).Return(nil, apperrors.ErrEventNotFound).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/events/9", nil, ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - non numeric id", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/events/abc", nil, ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid input", decodeError(w))
		mockService.AssertNotCalled(t, "EventByID", mock.Anything, mock.Anything)
	})
}

func TestRegisterForEvent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("RegisterForEvent", mock.Anything, attendee, uint64(1)).Return(nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events/1/registrations", nil, attendee))

		require.Equal(t, http.StatusCreated, w.Code)
		var body model.RegistrationStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, attendee, body.Address)
		assert.True(t, body.Registered)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - header address is malformed", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		req := createJSONHTTPRequest("POST", "/api/v1/events/1/registrations", nil, "")
		req.Header.Set("X-Caller-Address", "0x1234")
		w := serve(router, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "RegisterForEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Failed - ErrInvalidEventID", apperrors.ErrInvalidEventID, http.StatusBadRequest},
		{"Failed - ErrRegistrationClosed", apperrors.ErrRegistrationClosed, http.StatusConflict},
		{"Failed - ErrAlreadyRegistered", apperrors.ErrAlreadyRegistered, http.StatusConflict},
		{"Failed - ErrMissingRequiredToken", apperrors.ErrMissingRequiredToken, http.StatusForbidden},
		{"Failed - ErrCollaboratorUnavailable", fmt.Errorf("%w: timeout", apperrors.ErrCollaboratorUnavailable), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewRegistryServiceMock()
			router := setupRouter(mockService, nil)

			mockService.On("RegisterForEvent", mock.Anything, attendee, uint64(0)).Return(tc.err).Once()

			w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events/0/registrations", nil, attendee))

			assert.Equal(t, tc.status, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetRegistration(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("IsRegistered", mock.Anything, uint64(1), attendee).Return(true, nil).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/events/1/registrations/"+attendee.String(), nil, ""))

		require.Equal(t, http.StatusOK, w.Code)
		var body model.RegistrationStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Registered)
		mockService.AssertExpectations(t)
	})

	t.Run("Success - mixed-case address is normalized", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		mockService.On("IsRegistered", mock.Anything, uint64(1), model.MustParseAddress("0x2c0457f82b57148e8363b4589bb3294b23ae7625")).Return(false, nil).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/events/1/registrations/0x2C0457F82B57148e8363b4589bb3294b23AE7625", nil, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - invalid address", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, nil)

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/events/1/registrations/bob", nil, ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "IsRegistered", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCallerIdentity_JWT(t *testing.T) {
	authenticator := auth.NewJWTAuthenticator("test-secret")
	var issuer auth.TokenIssuer = authenticator

	t.Run("Success - subject becomes the caller", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, authenticator)

		token, err := issuer.Issue(attendee, time.Hour)
		require.NoError(t, err)
		mockService.On("RegisterForEvent", mock.Anything, attendee, uint64(2)).Return(nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/events/2/registrations", nil, "")
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(router, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - header identity is ignored once tokens are required", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, authenticator)

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/events/2/registrations", nil, attendee))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "RegisterForEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - token signed with another secret", func(t *testing.T) {
		mockService := mocks.NewRegistryServiceMock()
		router := setupRouter(mockService, authenticator)

		var foreign auth.TokenIssuer = auth.NewJWTAuthenticator("other")
		token, err := foreign.Issue(owner, time.Hour)
		require.NoError(t, err)

		req := createJSONHTTPRequest("POST", "/api/v1/events", comiconRequest(), "")
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(router, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})
}
