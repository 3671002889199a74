// Package store persists decoded acquisitions as TileDB arrays. Only beam
// records have an array schema and writer; attitude and position records
// are declared but not persisted.
package store

import (
	"errors"
	"reflect"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"

	em3 "github.com/oceanbeam/em3gram"
)

// Sentinel errors for the TileDB write path.
var (
	ErrCreateAttributeTdb = errors.New("store: error creating TileDB attribute")
	ErrCreateSchemaTdb    = errors.New("store: error creating TileDB schema")
	ErrCreateDimTdb       = errors.New("store: error creating TileDB dimension")
	ErrWriteBeamTdb       = errors.New("store: error writing beam array")
	ErrWriteAttitudeTdb   = errors.New("store: error writing attitude array")
	ErrWritePositionTdb   = errors.New("store: error writing position array")
)

// BeamRecord is the TileDB-tagged row shape for one georeferenced beam,
// struct-tag driven like the other record types below.
type BeamRecord struct {
	PingCount    uint16  `tiledb:"dtype=uint16,ftype=dim"`
	SerialNumber uint16  `tiledb:"dtype=uint16,ftype=dim"`
	BeamIndex    uint16  `tiledb:"dtype=uint16,ftype=dim"`
	Timestamp    int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	Latitude     float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Longitude    float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Depth        float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Flag         uint8   `tiledb:"dtype=uint8,ftype=attr" filters:"zstd(level=16)"`
}

// AttitudeRecord is the TileDB-tagged row shape for one interpolated
// motion sample. Dense arrays here use a plain row index dimension, with
// the real timestamp carried as an ordinary attribute.
type AttitudeRecord struct {
	RowIndex  uint64  `tiledb:"dtype=uint64,ftype=dim"`
	Timestamp int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	Roll      float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Pitch     float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Heave     float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Heading   float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

// PositionRecord is the TileDB-tagged row shape for one navigation fix.
type PositionRecord struct {
	RowIndex  uint64  `tiledb:"dtype=uint64,ftype=dim"`
	Timestamp int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	Latitude  float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Longitude float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

// schemaAttrs reflects over t (a pointer to a tiledb-tagged struct),
// skipping dimension fields and adding one TileDB attribute per remaining
// field to schema.
func schemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()
	filtDefs, _ := stgpsr.ParseStruct(t, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}

		def, ok := fieldTdbDefs["ftype"]
		if !ok {
			return errors.Join(ErrCreateAttributeTdb, errors.New("ftype tag not found on "+name))
		}
		ftype, _ := def.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		if err := createAttr(name, filtDefs[name], fieldTdbDefs, schema, ctx); err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}
	}
	return nil
}

// UnixNano packs an absolute time as TileDB stores it: nanoseconds since
// the Unix epoch.
func UnixNano(t time.Time) int64 { return t.UnixNano() }

// ToBeamRecords flattens a ping's georeferenced beams into BeamRecord rows
// ready for a TileDB write.
func ToBeamRecords(p *em3.Ping, geo []em3.GeoBeam, at time.Time) []BeamRecord {
	rows := make([]BeamRecord, len(geo))
	ts := UnixNano(at)
	for i, g := range geo {
		rows[i] = BeamRecord{
			PingCount:    p.Key.Count,
			SerialNumber: p.Key.SerialNumber,
			BeamIndex:    uint16(i),
			Timestamp:    ts,
			Latitude:     g.Latitude,
			Longitude:    g.Longitude,
			Depth:        g.Depth,
			Flag:         uint8(g.Flag),
		}
	}
	return rows
}
