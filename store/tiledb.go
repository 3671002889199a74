package store

import (
	"errors"
	"sync"

	"github.com/alitto/pond"
	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/samber/lo"
	stgpsr "github.com/yuin/stagparser"
)

// zstdFilter builds a Zstandard compression filter at the given level,
// the only codec this module's schemas request: beam rows compress well
// under zstd given their repetitive fixed-point fields.
func zstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// createAttr builds one TileDB attribute from its parsed tiledb/filters
// struct tags and attaches it to schema, narrowed to the zstd-only filter
// pipeline this module actually uses.
func createAttr(
	fieldName string,
	filterDefs []stgpsr.Definition,
	tiledbDefs map[string]stgpsr.Definition,
	schema *tiledb.ArraySchema,
	ctx *tiledb.Context,
) error {
	def, ok := tiledbDefs["dtype"]
	if !ok {
		return errors.New("store: dtype tag not found on " + fieldName)
	}
	dtypeName, _ := def.Attribute("dtype")

	var dtype tiledb.Datatype
	switch dtypeName {
	case "uint8":
		dtype = tiledb.TILEDB_UINT8
	case "uint16":
		dtype = tiledb.TILEDB_UINT16
	case "uint64":
		dtype = tiledb.TILEDB_UINT64
	case "int64":
		dtype = tiledb.TILEDB_INT64
	case "float64":
		dtype = tiledb.TILEDB_FLOAT64
	default:
		return errors.New("store: unsupported dtype " + dtypeName.(string))
	}

	filterList, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return err
	}
	defer filterList.Free()

	for _, filter := range filterDefs {
		if filter.Name() != "zstd" {
			continue
		}
		level, ok := filter.Attribute("level")
		if !ok {
			return errors.New("store: zstd level not defined on " + fieldName)
		}
		filt, err := zstdFilter(ctx, int32(level.(int64)))
		if err != nil {
			return err
		}
		defer filt.Free()
		if err := filterList.AddFilter(filt); err != nil {
			return err
		}
	}

	attr, err := tiledb.NewAttribute(ctx, fieldName, dtype)
	if err != nil {
		return err
	}
	defer attr.Free()

	if err := attr.SetFilterList(filterList); err != nil {
		return err
	}
	return schema.AddAttributes(attr)
}

// NewBeamArraySchema builds a sparse TileDB schema for BeamRecord, keyed
// by (PingCount, SerialNumber, BeamIndex) — a sparse/query-buffer design
// suited to the variable beam count per ping.
func NewBeamArraySchema(ctx *tiledb.Context) (*tiledb.ArraySchema, error) {
	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return nil, errors.Join(ErrCreateSchemaTdb, err)
	}

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(ErrCreateSchemaTdb, err)
	}
	defer domain.Free()

	for _, dim := range []struct {
		name     string
		dtype    tiledb.Datatype
		min, max uint16
	}{
		{"PingCount", tiledb.TILEDB_UINT16, 0, 65535},
		{"SerialNumber", tiledb.TILEDB_UINT16, 0, 65535},
		{"BeamIndex", tiledb.TILEDB_UINT16, 0, uint16(MaxBeamsPerPing - 1)},
	} {
		d, err := tiledb.NewDimension(ctx, dim.name, dim.dtype, []uint16{dim.min, dim.max}, uint16(1))
		if err != nil {
			return nil, errors.Join(ErrCreateDimTdb, err)
		}
		if err := domain.AddDimensions(d); err != nil {
			return nil, errors.Join(ErrCreateDimTdb, err)
		}
	}

	if err := schema.SetDomain(domain); err != nil {
		return nil, errors.Join(ErrCreateSchemaTdb, err)
	}
	if err := schemaAttrs(&BeamRecord{}, schema, ctx); err != nil {
		return nil, err
	}
	return schema, nil
}

// MaxBeamsPerPing bounds the BeamIndex dimension's domain.
const MaxBeamsPerPing = 512

// WriteBeamRecords writes a batch of BeamRecord rows to a sparse array at
// uri, opening it for writing, constructing the query buffers by
// reflection, and finalising the write.
func WriteBeamRecords(ctx *tiledb.Context, uri string, rows []BeamRecord) error {
	if len(rows) == 0 {
		return nil
	}
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrWriteBeamTdb, err)
	}
	defer array.Free()
	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(ErrWriteBeamTdb, err)
	}
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteBeamTdb, err)
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return errors.Join(ErrWriteBeamTdb, err)
	}

	pingCount := make([]uint16, len(rows))
	serial := make([]uint16, len(rows))
	beamIndex := make([]uint16, len(rows))
	timestamp := make([]int64, len(rows))
	lat := make([]float64, len(rows))
	lon := make([]float64, len(rows))
	depth := make([]float64, len(rows))
	flag := make([]uint8, len(rows))
	for i, r := range rows {
		pingCount[i], serial[i], beamIndex[i] = r.PingCount, r.SerialNumber, r.BeamIndex
		timestamp[i], lat[i], lon[i], depth[i], flag[i] = r.Timestamp, r.Latitude, r.Longitude, r.Depth, r.Flag
	}

	buffers := []struct {
		name string
		buf  any
	}{
		{"PingCount", pingCount}, {"SerialNumber", serial}, {"BeamIndex", beamIndex},
		{"Timestamp", timestamp}, {"Latitude", lat}, {"Longitude", lon},
		{"Depth", depth}, {"Flag", flag},
	}
	for _, b := range buffers {
		if _, err := query.SetDataBuffer(b.name, b.buf); err != nil {
			return errors.Join(ErrWriteBeamTdb, err)
		}
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteBeamTdb, err)
	}
	return query.Finalize()
}

// WriteBeamRecordsConcurrently fans a batch of per-ping row groups out
// across a bounded worker pool before writing, the same pattern the
// teacher's cmd/main.go uses pond for when converting many files at once.
func WriteBeamRecordsConcurrently(ctx *tiledb.Context, uri string, groups [][]BeamRecord, poolSize int) error {
	pool := pond.New(poolSize, 0, pond.MinWorkers(poolSize))

	flat := lo.Flatten(groups)
	chunks := lo.Chunk(flat, 4096)

	var mu sync.Mutex
	var firstErr error
	for _, chunk := range chunks {
		chunk := chunk
		pool.Submit(func() {
			if err := WriteBeamRecords(ctx, uri, chunk); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}
	pool.StopAndWait()
	return firstErr
}
