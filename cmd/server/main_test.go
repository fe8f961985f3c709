package main

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateModelsCoverEntitySet(t *testing.T) {
	got := make(map[string]bool, len(migrateModels))
	for _, m := range migrateModels {
		typ := reflect.TypeOf(m)
		require.Equal(t, reflect.Ptr, typ.Kind())
		got[typ.Elem().Name()] = true
	}

	// 每张表遗漏都会让新库在对应查询上直接报错
	want := []string{
		"User", "Building", "Level",
		"RoomType", "SpaceType", "HallType", "UtilityType",
		"Unit", "UnitUtility", "UnitImage",
		"Tenant", "Contract", "Invoice", "InvoiceItem",
		"MaintenanceRequest",
	}
	for _, name := range want {
		assert.True(t, got[name], "missing %s in migration set", name)
	}
	assert.Len(t, migrateModels, len(want))
}
