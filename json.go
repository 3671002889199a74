package em3

import "encoding/json"

// jsonBeam is the wire shape for one georeferenced beam in an extract()
// projection, a flattened, human-readable view
// rather than the internal GeoBeam/MergedBeam split.
type jsonBeam struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Depth         float64 `json:"depth"`
	DepressionDeg float64 `json:"depression_deg"`
	AzimuthDeg    float64 `json:"azimuth_deg"`
	BeamHeaveM    float64 `json:"beam_heave_m"`
	Flag          uint8   `json:"flag"`
}

// jsonPing is the wire shape for one ping's extract() projection.
type jsonPing struct {
	PingCount    uint16     `json:"ping_count"`
	SerialNumber uint16     `json:"serial_number"`
	Model        uint16     `json:"model"`
	Date         uint32     `json:"date"`
	Msec         uint32     `json:"msec"`
	Beams        []jsonBeam `json:"beams"`
}

// MarshalExtractJSON projects a ping plus its georeferenced beams into the
// JSON form extract() hands back to callers outside the Go API.
func MarshalExtractJSON(p *Ping, geo []GeoBeam) ([]byte, error) {
	out := jsonPing{
		PingCount:    p.Key.Count,
		SerialNumber: p.Key.SerialNumber,
		Model:        uint16(p.Model),
		Date:         p.Date,
		Msec:         p.Msec,
		Beams:        make([]jsonBeam, len(geo)),
	}
	for i, g := range geo {
		out.Beams[i] = jsonBeam{
			Latitude:      g.Latitude,
			Longitude:     g.Longitude,
			Depth:         g.Depth,
			DepressionDeg: g.DepressionDeg,
			AzimuthDeg:    g.AzimuthDeg,
			BeamHeaveM:    g.BeamHeaveM,
			Flag:          uint8(g.Flag),
		}
	}
	return json.Marshal(out)
}
