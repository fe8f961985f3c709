package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-pms/internal/pms/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type multipartBuilder struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipartBuilder() *multipartBuilder {
	b := &multipartBuilder{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

func (b *multipartBuilder) field(key, value string) *multipartBuilder {
	_ = b.writer.WriteField(key, value)
	return b
}

func (b *multipartBuilder) file(key, name string, content []byte) *multipartBuilder {
	w, _ := b.writer.CreateFormFile(key, name)
	_, _ = w.Write(content)
	return b
}

func (b *multipartBuilder) request() *http.Request {
	_ = b.writer.Close()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/units/unit-1", &b.buf)
	req.Header.Set("Content-Type", b.writer.FormDataContentType())
	return req
}

func testContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	return c, rec
}

func saveFields() *multipartBuilder {
	return newMultipartBuilder().
		field("unitNumber", "un-7").
		field("unitType", "ROOM").
		field("hasMeter", "true").
		field("levelId", "lvl-1").
		field("unitSpace", "35.5").
		field("rentalFee", "1800").
		field("roomTypeId", "rt-1")
}

func TestParseSaveRequestFullPayload(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	req := saveFields().
		field("utilityTypeIds", "ut-1").
		field("utilityTypeIds", "ut-3").
		field("utilityTypeIds", "ut-4").
		field("imagesToRemove", `["https://cdn.example.com/u/a.jpg"]`).
		file("images", "new.jpg", []byte("fake image bytes")).
		request()

	c, _ := testContext(req)
	parsed, cleanup, err := h.parseSaveRequest(c)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "un-7", parsed.UnitNumber, "normalization happens in the service, not the parser")
	assert.Equal(t, "ROOM", parsed.UnitType)
	assert.True(t, parsed.HasMeter)
	assert.Equal(t, "lvl-1", parsed.LevelID)
	assert.Equal(t, 35.5, parsed.UnitSpace)
	assert.Equal(t, 1800.0, parsed.RentalFee)
	assert.Equal(t, "rt-1", parsed.RoomTypeID)
	assert.Equal(t, []string{"ut-1", "ut-3", "ut-4"}, parsed.UtilityTypeIDs)
	assert.Equal(t, []string{"https://cdn.example.com/u/a.jpg"}, parsed.ImagesToRemove)

	require.Len(t, parsed.Images, 1)
	assert.Equal(t, "new.jpg", parsed.Images[0].FileName)
	content, err := io.ReadAll(parsed.Images[0].Reader)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(content))
}

func TestParseSaveRequestMissingRequired(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	req := newMultipartBuilder().
		field("unitType", "ROOM").
		field("unitSpace", "35.5").
		field("rentalFee", "1800").
		request()

	c, _ := testContext(req)
	_, _, err := h.parseSaveRequest(c)
	require.EqualError(t, err, "unitNumber, unitType and levelId are required")
}

func TestParseSaveRequestRejectsBadNumbers(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	req := newMultipartBuilder().
		field("unitNumber", "UN-007").
		field("unitType", "ROOM").
		field("levelId", "lvl-1").
		field("unitSpace", "abc").
		field("rentalFee", "1800").
		request()
	c, _ := testContext(req)
	_, _, err := h.parseSaveRequest(c)
	require.EqualError(t, err, "unitSpace must be a number")
}

func TestParseSaveRequestRejectsBadRemoveList(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	req := saveFields().field("imagesToRemove", "not-json").request()
	c, _ := testContext(req)
	_, _, err := h.parseSaveRequest(c)
	require.EqualError(t, err, "imagesToRemove must be a JSON array of urls")
}

func TestParseSaveRequestRequiresMultipart(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/units/unit-1",
		bytes.NewBufferString(`{"unitNumber":"UN-007"}`))
	req.Header.Set("Content-Type", "application/json")

	c, _ := testContext(req)
	_, _, err := h.parseSaveRequest(c)
	require.EqualError(t, err, "multipart form is required")
}

func TestWriteSaveErrorMapsValidation(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	c, rec := testContext(httptest.NewRequest(http.MethodPut, "/api/v1/units/unit-1", nil))
	h.writeSaveError(c, &service.UnitValidationError{Fields: map[string]string{
		"unitSpace": "Unit space is required",
	}})

	assert.Equal(t, 422, rec.Code)
	var body struct {
		Code int `json:"code"`
		Data struct {
			Fields map[string]string `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42200, body.Code)
	assert.Equal(t, "Unit space is required", body.Data.Fields["unitSpace"])
}

func TestWriteSaveErrorMapsDuplicate(t *testing.T) {
	h := NewUnitHandler(nil, zap.NewNop())

	c, rec := testContext(httptest.NewRequest(http.MethodPut, "/api/v1/units/unit-1", nil))
	h.writeSaveError(c, service.ErrDuplicateUnitNumber)

	assert.Equal(t, 409, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 40900, body.Code)
}
