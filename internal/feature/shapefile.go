package feature

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	orbwkb "github.com/paulmach/orb/encoding/wkb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ReadRegionsShapefile reads polygon records from a .shp file (with its .dbf
// sibling) into regions. The name comes from the attribute field nameField,
// matched case-insensitively and decoded per the .cpg sibling. Records with
// no usable polygon keep a nil geometry.
func ReadRegionsShapefile(shpPath, nameField string) ([]Region, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		zap.L().Warn("feature: shapefile name field not found",
			zap.String("path", shpPath),
			zap.String("field", nameField),
		)
	}

	dec := codePage(shpPath)

	var regions []Region
	for reader.Next() {
		idx, shape := reader.Shape()

		var name string
		named := false
		if nameIdx >= 0 {
			name = decodeAttribute(dec, strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
			name = strings.TrimSpace(name)
			named = name != ""
		}

		g, err := shapeToOrb(shape)
		if err != nil {
			zap.L().Debug("feature: skipping shapefile geometry", zap.Int("record", idx), zap.Error(err))
		}

		regions = append(regions, NewRegion(featureID(nil, "region", idx), name, named, g))
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "feature: read shapefile %s", shpPath)
	}

	return regions, nil
}

// codePage reads the .cpg file next to shpPath and returns the matching
// decoder. Nil means UTF-8 or unknown.
func codePage(shpPath string) *encoding.Decoder {
	base := strings.TrimSuffix(shpPath, ".shp")
	base = strings.TrimSuffix(base, ".SHP")

	var data []byte
	for _, ext := range []string{".cpg", ".CPG"} {
		b, err := os.ReadFile(base + ext)
		if err == nil {
			data = b
			break
		}
	}
	if data == nil {
		return nil
	}

	cp := strings.ToUpper(strings.TrimSpace(string(data)))
	cp = strings.NewReplacer("-", "", "_", "", " ", "").Replace(cp)
	switch cp {
	case "UTF8", "65001":
		return nil
	case "ISO88591", "88591", "LATIN1", "28591":
		return charmap.ISO8859_1.NewDecoder()
	case "ISO885915", "885915", "28605":
		return charmap.ISO8859_15.NewDecoder()
	case "1252", "CP1252", "WINDOWS1252", "ANSI1252":
		return charmap.Windows1252.NewDecoder()
	case "850", "CP850", "OEM850":
		return charmap.CodePage850.NewDecoder()
	case "865", "CP865", "OEM865":
		return charmap.CodePage865.NewDecoder()
	default:
		zap.L().Debug("feature: unknown shapefile code page", zap.String("cpg", cp))
		return nil
	}
}

// decodeAttribute converts a DBF attribute to UTF-8. Without a known code
// page, invalid UTF-8 is read as ISO-8859-1.
func decodeAttribute(dec *encoding.Decoder, raw string) string {
	if dec == nil {
		if utf8.ValidString(raw) {
			return raw
		}
		dec = charmap.ISO8859_1.NewDecoder()
	}
	s, err := dec.String(raw)
	if err != nil {
		return strings.ToValidUTF8(raw, "")
	}
	return s
}

// shapeToOrb converts a shapefile polygon into an orb.MultiPolygon by way of
// go-geom and WKB. Non-polygon shapes yield nil.
func shapeToOrb(shape shp.Shape) (orb.Geometry, error) {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil {
		return nil, nil
	}

	mp := polygonToMultiPolygon(p)
	if mp == nil {
		return nil, nil
	}

	data, err := wkb.Marshal(mp, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "feature: encode wkb")
	}

	g, err := orbwkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "feature: decode wkb")
	}
	return g, nil
}

// polygonToMultiPolygon converts shapefile parts into a geom.MultiPolygon.
// Each clockwise part starts a new polygon; counter-clockwise parts are holes
// of the polygon before them.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("feature: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || end-start < 4 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) < 0 {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("feature: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace sum over flat XY pairs; negative means clockwise,
// which shapefiles use for outer rings.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
