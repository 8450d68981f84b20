package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"event-registry/internal/auth"
	"event-registry/internal/handler"
	"event-registry/internal/model"
	"event-registry/internal/service/mocks"

	"github.com/gin-gonic/gin"
)

var (
	InvalidJSON = `{"invalid": json}`

	owner    = model.MustParseAddress("0x00000000000000000000000000000000000000aa")
	attendee = model.MustParseAddress("0x00000000000000000000000000000000000000b1")
)

func setupRouter(mockService *mocks.RegistryServiceMock, verifier auth.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewRegistryHandler(mockService, verifier).RegisterRoutes(router)
	return router
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	if s, ok := data.(string); ok {
		return bytes.NewBufferString(s)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body, sent as caller in dev mode
func createJSONHTTPRequest(method, url string, data interface{}, caller model.Address) *http.Request {
	var body *bytes.Buffer
	if data == nil {
		body = bytes.NewBuffer(nil)
	} else {
		body = createJSONRequest(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(handler.CallerAddressHeader, caller.String())
	}
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Error
}
