package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-pms/internal/unitform"
)

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func TestGetUnitDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/units/unit-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeEnvelope(w, 0, "success", map[string]any{
			"id":           "unit-1",
			"unit_number":  "UN-007",
			"level_id":     "lvl-1",
			"unit_type":    "ROOM",
			"room_type_id": "rt-1",
			"unit_space":   30.5,
			"rental_fee":   1500,
			"has_meter":    true,
			"status":       "vacant",
			"utilities":    []map[string]any{{"utility_type_id": "ut-1"}, {"utility_type_id": "ut-2"}},
			"images":       []map[string]any{{"id": "img-1", "url": "https://cdn.example.com/u/a.jpg"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token", zap.NewNop())
	detail, err := c.GetUnit(context.Background(), "unit-1")
	require.NoError(t, err)

	assert.Equal(t, "UN-007", detail.UnitNumber)
	require.NotNil(t, detail.RoomTypeID)
	assert.Equal(t, "rt-1", *detail.RoomTypeID)
	assert.Nil(t, detail.SpaceTypeID)
	assert.Equal(t, 30.5, detail.UnitSpace)
	assert.True(t, detail.HasMeter)
	assert.Len(t, detail.Utilities, 2)
	assert.Len(t, detail.Images, 1)
}

func TestEnvelopeErrorSurfacesCodeAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 40400, "unit not found", nil)
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	_, err := c.GetUnit(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error 40400: unit not found")
}

func TestUnitDetailSnapshot(t *testing.T) {
	roomType := "rt-1"
	detail := &UnitDetail{
		ID:         "unit-1",
		UnitNumber: "UN-007",
		LevelID:    "lvl-1",
		UnitType:   "ROOM",
		RoomTypeID: &roomType,
		UnitSpace:  30,
		RentalFee:  1500,
		HasMeter:   true,
		Utilities:  []UnitUtility{{UtilityTypeID: "ut-1"}, {UtilityTypeID: "ut-2"}},
		Images:     []UnitImage{{ID: "img-1", URL: "https://cdn.example.com/u/a.jpg"}},
	}

	snap := detail.Snapshot()
	assert.Equal(t, "unit-1", snap.UnitID)
	assert.Equal(t, "rt-1", snap.RoomTypeID)
	assert.Empty(t, snap.SpaceTypeID)
	assert.Equal(t, []string{"ut-1", "ut-2"}, snap.UtilityTypeIDs)
	require.Len(t, snap.Images, 1)
	assert.Equal(t, "https://cdn.example.com/u/a.jpg", snap.Images[0].URL)
}

func TestCheckUnitNumberQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/units/check-number", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "UN-008", q.Get("unit_number"))
		assert.Equal(t, "lvl-1", q.Get("level_id"))
		assert.Equal(t, "unit-1", q.Get("exclude_id"))
		writeEnvelope(w, 0, "success", map[string]bool{"exists": true})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	exists, err := c.CheckUnitNumber(context.Background(), "UN-008", "lvl-1", "unit-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

// listData 构造与后端 ListResponse 一致的列表载荷（items + 嵌套 pagination）
func listData(items []map[string]any, page, pageSize, total int) map[string]any {
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}
	return map[string]any{
		"items": items,
		"pagination": map[string]any{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
		},
	}
}

func TestSearchUnitsDefaultsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "lvl-1", q.Get("level_id"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "100", q.Get("page_size"))
		writeEnvelope(w, 0, "success", listData([]map[string]any{
			{"id": "unit-1", "unit_number": "UN-001", "unit_space": 20.0},
			{"id": "unit-2", "unit_number": "UN-002", "unit_space": 25.0},
		}, 1, 100, 1500))
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	page, err := c.SearchUnits(context.Background(), UnitQuery{LevelID: "lvl-1"})
	require.NoError(t, err)
	assert.Equal(t, 1500, page.Pagination.Total, "total comes from the nested pagination object")
	assert.Equal(t, 15, page.Pagination.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "UN-001", page.Items[0].UnitNumber)
}

func TestUsedAreaInBuildingExcludesSelf(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bld-1", r.URL.Query().Get("building_id"))
		writeEnvelope(w, 0, "success", listData([]map[string]any{
			{"id": "unit-1", "unit_space": 30.0},
			{"id": "unit-2", "unit_space": 45.0},
			{"id": "unit-3", "unit_space": 25.0},
		}, 1, 1000, 3))
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	used, err := c.UsedAreaInBuilding(context.Background(), "bld-1", "unit-2")
	require.NoError(t, err)
	assert.Equal(t, 55.0, used)
}

func TestCountUnitsInLevelPagesThroughAll(t *testing.T) {
	// 1500 units across two pages: the count must walk every page
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("page_size"))
		page := r.URL.Query().Get("page")

		size := 1000
		if page == "2" {
			size = 500
		}
		items := make([]map[string]any, size)
		for i := range items {
			items[i] = map[string]any{"id": fmt.Sprintf("unit-%s-%d", page, i), "unit_space": 10.0}
		}
		pageNo := 1
		if page == "2" {
			pageNo = 2
		}
		writeEnvelope(w, 0, "success", listData(items, pageNo, 1000, 1500))
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	count, err := c.CountUnitsInLevel(context.Background(), "lvl-1", "unit-2-0")
	require.NoError(t, err)
	assert.Equal(t, 1499, count, "one of the 1500 is the excluded unit")
}

func TestUpdateUnitMultipartContract(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "UN-008", r.FormValue("unitNumber"))
		assert.Equal(t, "ROOM", r.FormValue("unitType"))
		assert.Equal(t, "true", r.FormValue("hasMeter"))
		assert.Equal(t, "lvl-1", r.FormValue("levelId"))
		assert.Equal(t, "35.5", r.FormValue("unitSpace"))
		assert.Equal(t, "1800", r.FormValue("rentalFee"))
		assert.Equal(t, "rt-1", r.FormValue("roomTypeId"))
		assert.Empty(t, r.FormValue("spaceTypeId"))

		// utilities: repeated field carrying the full final set
		assert.Equal(t, []string{"ut-1", "ut-3", "ut-4"}, r.MultipartForm.Value["utilityTypeIds"])

		// images: delta only
		files := r.MultipartForm.File["images"]
		require.Len(t, files, 1)
		assert.Equal(t, "new.jpg", files[0].Filename)

		var toRemove []string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("imagesToRemove")), &toRemove))
		assert.Equal(t, []string{"https://cdn.example.com/u/a.jpg"}, toRemove)

		writeEnvelope(w, 0, "success", nil)
	}))
	defer srv.Close()

	c := New(srv.URL, "", zap.NewNop())
	err := c.UpdateUnit(context.Background(), "unit-1", &unitform.Submission{
		UnitNumber:     "UN-008",
		UnitType:       "ROOM",
		HasMeter:       true,
		LevelID:        "lvl-1",
		UnitSpace:      35.5,
		RentalFee:      1800,
		RoomTypeID:     "rt-1",
		UtilityTypeIDs: []string{"ut-1", "ut-3", "ut-4"},
		NewImages:      []unitform.SubmissionFile{{FileName: "new.jpg", Content: []byte("fake image bytes")}},
		ImagesToRemove: []string{"https://cdn.example.com/u/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/units/unit-1", gotPath)
}

func TestFormBackendAdaptsCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/room-types":
			writeEnvelope(w, 0, "success", []map[string]any{{"id": "rt-1", "type_name": "Standard"}})
		case "/api/v1/levels/lvl-1":
			writeEnvelope(w, 0, "success", map[string]any{
				"id": "lvl-1", "building_id": "bld-1", "name": "Level 1", "total_units": 10,
			})
		default:
			writeEnvelope(w, 40400, fmt.Sprintf("no route %s", r.URL.Path), nil)
		}
	}))
	defer srv.Close()

	backend := NewFormBackend(New(srv.URL, "", zap.NewNop()))

	types, err := backend.ListRoomTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, unitform.TypeOption{ID: "rt-1", TypeName: "Standard"}, types[0])

	level, err := backend.GetLevel(context.Background(), "lvl-1")
	require.NoError(t, err)
	assert.Equal(t, "bld-1", level.BuildingID)
	require.NotNil(t, level.TotalUnits)
	assert.Equal(t, 10, *level.TotalUnits)
}
