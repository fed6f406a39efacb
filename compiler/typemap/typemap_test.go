package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	tests := []struct {
		physical string
		expected Mapping
	}{
		{"int", Mapping{Type: TypeInt32, Storage: "int"}},
		{"int(11)", Mapping{Type: TypeInt32, Storage: "int"}},
		{"int unsigned", Mapping{Type: TypeUint32, Storage: "int", Unsigned: true}},
		{"smallint(5) unsigned", Mapping{Type: TypeUint16, Storage: "smallint", Unsigned: true}},
		{"tinyint(4)", Mapping{Type: TypeInt8, Storage: "tinyint"}},
		{"tinyint(1)", Mapping{Type: TypeBool, Storage: "tinyint", Transform: TinyIntBool}},
		{"bigint", Mapping{Type: TypeString, Storage: "bigint", Transform: BigIntText}},
		{"bigint(20) unsigned", Mapping{Type: TypeString, Storage: "bigint", Unsigned: true, Transform: BigIntText}},
		{"varchar(64)", Mapping{Type: TypeString, Storage: "varchar", Length: 64}},
		{"VARCHAR(32)", Mapping{Type: TypeString, Storage: "varchar", Length: 32}},
		{"char(2)", Mapping{Type: TypeString, Storage: "char", Length: 2}},
		{"text", Mapping{Type: TypeString, Storage: "text", Length: 65535}},
		{"longtext", Mapping{Type: TypeString, Storage: "longtext", Length: 4294967295}},
		{"datetime(6)", Mapping{Type: TypeTime, Storage: "datetime"}},
		{"timestamp", Mapping{Type: TypeTime, Storage: "timestamp"}},
		{"date", Mapping{Type: TypeTime, Storage: "date"}},
		{"time", Mapping{Type: TypeString, Storage: "time"}},
		{"year", Mapping{Type: TypeInt16, Storage: "year"}},
		{"blob", Mapping{Type: TypeBytes, Storage: "blob", Length: 65535}},
		{"varbinary(16)", Mapping{Type: TypeBytes, Storage: "varbinary", Length: 16}},
		{"json", Mapping{Type: TypeJSON, Storage: "json"}},
		{"double", Mapping{Type: TypeFloat64, Storage: "double"}},
		{"float", Mapping{Type: TypeFloat32, Storage: "float"}},
		{"decimal(10,2)", Mapping{Type: TypeString, Storage: "decimal"}},
		{"geometry", Mapping{Type: TypeUntyped, Storage: "text"}},
		{"bit(1)", Mapping{Type: TypeUntyped, Storage: "text"}},
		{"", Mapping{Type: TypeUntyped, Storage: "text"}},
		{"enum(", Mapping{Type: TypeUntyped, Storage: "text"}},
		{"enum()", Mapping{Type: TypeUntyped, Storage: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.physical, func(t *testing.T) {
			got := Map(tt.physical)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Map(tt.physical), "Map must be pure")
		})
	}
}

func TestMap_Enum(t *testing.T) {
	t.Run("Members", func(t *testing.T) {
		m := Map("enum('a','b','2')")
		require.Equal(t, TypeEnum, m.Type)
		require.NotNil(t, m.Enum)
		assert.Equal(t, []string{"a", "b", "2"}, m.Enum.Values())
		assert.Equal(t, []Member{
			{Value: "a", Name: "A"},
			{Value: "b", Name: "B"},
			{Value: "2", Name: "V2"},
		}, m.Enum.Members)
	})

	t.Run("Escapes", func(t *testing.T) {
		m := Map(`enum('it''s','back\\slash','in progress', 'done')`)
		require.Equal(t, TypeEnum, m.Type)
		assert.Equal(t, []string{"it's", `back\slash`, "in progress", "done"}, m.Enum.Values())
		assert.Equal(t, "InProgress", m.Enum.Members[2].Name)
	})

	t.Run("DuplicateNames", func(t *testing.T) {
		m := Map("enum('in-progress','in_progress','')")
		require.Equal(t, TypeEnum, m.Type)
		assert.Equal(t, "InProgress", m.Enum.Members[0].Name)
		assert.Equal(t, "InProgress1", m.Enum.Members[1].Name)
		assert.Equal(t, "Empty", m.Enum.Members[2].Name)

		m = Map("enum('x','X2','X')")
		require.Equal(t, TypeEnum, m.Type)
		seen := make(map[string]bool)
		for _, mb := range m.Enum.Members {
			assert.False(t, seen[mb.Name], "duplicate member name %s", mb.Name)
			seen[mb.Name] = true
		}
		assert.Equal(t, []Member{
			{Value: "x", Name: "X"},
			{Value: "X2", Name: "X2"},
			{Value: "X", Name: "X3"},
		}, m.Enum.Members)
	})

	t.Run("Unterminated", func(t *testing.T) {
		assert.Equal(t, TypeUntyped, Map("enum('a").Type)
	})
}

func TestMapping_Native(t *testing.T) {
	tests := []struct {
		physical string
		expected Mapping
	}{
		{"bigint", Mapping{Type: TypeInt64, Storage: "bigint"}},
		{"bigint(20) unsigned", Mapping{Type: TypeUint64, Storage: "bigint", Unsigned: true}},
		{"tinyint(1)", Mapping{Type: TypeInt8, Storage: "tinyint"}},
		{"tinyint(1) unsigned", Mapping{Type: TypeUint8, Storage: "tinyint", Unsigned: true}},
		{"int unsigned", Mapping{Type: TypeUint32, Storage: "int", Unsigned: true}},
		{"varchar(36)", Mapping{Type: TypeString, Storage: "varchar", Length: 36}},
	}
	for _, tt := range tests {
		t.Run(tt.physical, func(t *testing.T) {
			assert.Equal(t, tt.expected, Map(tt.physical).Native())
		})
	}
}

func TestType(t *testing.T) {
	assert.Equal(t, "untyped", TypeUntyped.String())
	assert.Equal(t, "time.Time", TypeTime.String())
	assert.Equal(t, "type(99)", Type(99).String())
	assert.Equal(t, "uint64", TypeUint64.String())
	assert.True(t, TypeInt8.Numeric())
	assert.True(t, TypeInt64.Numeric())
	assert.True(t, TypeFloat64.Numeric())
	assert.False(t, TypeBool.Numeric())
	assert.False(t, TypeString.Numeric())
}
