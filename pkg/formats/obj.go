// Package formats provides parsers for 3D viewer asset file formats.
// OBJ (Wavefront) polygonal geometry parser.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// OBJ format errors.
var (
	ErrOBJParse                = errors.New("failed to read OBJ line")
	ErrInvalidObjectName       = errors.New("invalid OBJ object name")
	ErrInvalidMaterialName     = errors.New("invalid material name")
	ErrFaceParse               = errors.New("malformed face directive")
	ErrFaceVertexOutOfBounds   = errors.New("face position index out of bounds")
	ErrFaceTexCoordOutOfBounds = errors.New("face texcoord index out of bounds")
	ErrFaceNormalOutOfBounds   = errors.New("face normal index out of bounds")
	ErrInvalidPolygon          = errors.New("polygon has fewer than 3 vertices")
)

// MissingIndex marks an absent texcoord or normal slot in a face vertex
// (e.g. the "v//vn" form). OBJ indices start at 1, so after resolution to
// zero-based offsets a negative value can never be a valid slot.
const MissingIndex = -1

// VertexIndices is the v/vt/vn index triplet for a single face vertex,
// resolved to zero-based offsets into the attribute arrays. Absent slots
// hold MissingIndex. The triplet is the deduplication key during export.
type VertexIndices struct {
	V, VT, VN int
}

// faceKind classifies a face directive by its vertex count.
type faceKind int

const (
	facePoint    faceKind = iota // 1 vertex, not renderable
	faceLine                     // 2 vertices, not renderable
	faceTriangle                 // 3 vertices
	faceQuad                     // 4 vertices
	facePolygon                  // 5+ vertices
)

// face is a classified face directive awaiting triangulation and export.
type face struct {
	kind  faceKind
	verts []VertexIndices
}

// Mesh holds the flat attribute arrays and index buffer for one model,
// ready for upload by the rendering collaborator.
type Mesh struct {
	Positions []float32 // 3 floats per vertex
	Normals   []float32 // 3 floats per vertex, empty when the source has none
	TexCoords []float32 // 2 floats per vertex, empty when the source has none
	Indices   []uint32  // one entry per face vertex after triangulation

	// MaterialID indexes a material list owned by the caller, -1 when unset.
	MaterialID int
}

// VertexCount returns the number of unique vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// HasNormals returns true if the mesh carries per-vertex normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0
}

// HasTexCoords returns true if the mesh carries texture coordinates.
func (m *Mesh) HasTexCoords() bool {
	return len(m.TexCoords) > 0
}

// Model is a named mesh produced by an o/g directive or the end-of-file
// flush.
type Model struct {
	Name string
	Mesh Mesh
}

// Material describes a surface definition referenced from an OBJ file.
// Only stub recognition is implemented: mtllib directives are logged and
// skipped, so ParseOBJ never populates materials itself. The type exists
// for the rendering collaborator that resolves Mesh.MaterialID.
type Material struct {
	Name          string
	Ambient       [3]float32
	Diffuse       [3]float32
	Specular      [3]float32
	Shininess     float32
	Texture       string
	UnknownParams map[string]string
}

// ParseOBJ parses Wavefront OBJ text from a reader into a list of models.
//
// Malformed v/vn/vt directives and unknown keywords are logged and skipped;
// malformed face directives and out-of-range face indices abort the load.
func ParseOBJ(r io.Reader) ([]Model, error) {
	var (
		models    []Model
		name      = "undefined"
		positions []float32
		normals   []float32
		texCoords []float32
		faces     []face
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "#":
			continue

		case "v":
			parseVertexData(fields[1:], &positions, 3, line, "position")

		case "vn":
			parseVertexData(fields[1:], &normals, 3, line, "normal")

		case "vt":
			parseVertexData(fields[1:], &texCoords, 2, line, "texture")

		case "f", "l":
			f, err := parseFace(fields[1:], len(positions)/3, len(texCoords)/2, len(normals)/3)
			if err != nil {
				return nil, err
			}
			faces = append(faces, f)

		case "o", "g":
			// Flush accumulated faces under the previous name before
			// switching to the new object/group.
			if len(faces) > 0 {
				mesh, err := exportFaces(positions, texCoords, normals, faces, -1)
				if err != nil {
					return nil, err
				}
				models = append(models, Model{Name: name, Mesh: mesh})
				faces = nil
			}
			name = strings.TrimSpace(line[len(fields[0]):])
			if name == "" {
				name = "undefined"
			}

		case "mtllib":
			logger.Debug("mtllib not implemented", zap.String("line", line))

		default:
			logger.Warn("unknown OBJ directive", zap.String("line", line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOBJParse, err)
	}

	// End-of-file flush for faces not closed by an o/g directive.
	if len(faces) > 0 {
		mesh, err := exportFaces(positions, texCoords, normals, faces, -1)
		if err != nil {
			return nil, err
		}
		models = append(models, Model{Name: name, Mesh: mesh})
	}

	return models, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(bytes.NewReader(data))
}

// parseVertexData parses a fixed count of float fields into target. A short
// or malformed directive discards the whole directive and logs a warning;
// extra trailing fields (e.g. the optional w on "v") are ignored.
func parseVertexData(fields []string, target *[]float32, size int, line, what string) {
	oldLen := len(*target)
	for i := 0; i < size && i < len(fields); i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			logger.Warn("invalid "+what+" vertex", zap.String("line", line))
			*target = (*target)[:oldLen]
			return
		}
		*target = append(*target, float32(v))
	}
	if len(*target)-oldLen != size {
		logger.Warn("invalid "+what+" vertex", zap.String("line", line))
		*target = (*target)[:oldLen]
	}
}

// parseFace parses and classifies a face directive. posCount, texCount and
// normCount are the current attribute counts, needed to resolve negative
// (end-relative) indices.
func parseFace(fields []string, posCount, texCount, normCount int) (face, error) {
	verts := make([]VertexIndices, 0, len(fields))
	for _, f := range fields {
		vi, err := parseVertexIndices(f, posCount, texCount, normCount)
		if err != nil {
			return face{}, err
		}
		verts = append(verts, vi)
	}

	switch len(verts) {
	case 0:
		return face{}, fmt.Errorf("%w: no vertices", ErrFaceParse)
	case 1:
		return face{kind: facePoint, verts: verts}, nil
	case 2:
		return face{kind: faceLine, verts: verts}, nil
	case 3:
		return face{kind: faceTriangle, verts: verts}, nil
	case 4:
		return face{kind: faceQuad, verts: verts}, nil
	default:
		return face{kind: facePolygon, verts: verts}, nil
	}
}

// parseVertexIndices parses one v/vt/vn component group of a face directive.
// Positive indices are 1-based, negative indices are relative to the end of
// the corresponding attribute array, empty components stay MissingIndex.
func parseVertexIndices(s string, posCount, texCount, normCount int) (VertexIndices, error) {
	counts := [3]int{posCount, texCount, normCount}
	indices := [3]int{MissingIndex, MissingIndex, MissingIndex}

	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return VertexIndices{}, fmt.Errorf("%w: too many components in %q", ErrFaceParse, s)
	}
	for i, part := range parts {
		if part == "" {
			continue
		}
		x, err := strconv.Atoi(part)
		if err != nil {
			return VertexIndices{}, fmt.Errorf("%w: bad index %q", ErrFaceParse, s)
		}
		if x < 0 {
			indices[i] = counts[i] + x
		} else {
			indices[i] = x - 1
		}
	}

	return VertexIndices{V: indices[0], VT: indices[1], VN: indices[2]}, nil
}

// addVertex appends a face vertex to the mesh, reusing the output index when
// the v/vt/vn triplet was seen before and appending attribute data only on
// first occurrence. Output indices are assigned sequentially from 0.
func addVertex(mesh *Mesh, indexMap map[VertexIndices]uint32, vert VertexIndices, pos, norm, tex []float32) error {
	if i, ok := indexMap[vert]; ok {
		mesh.Indices = append(mesh.Indices, i)
		return nil
	}

	v := vert.V
	if v < 0 || v*3+2 >= len(pos) {
		return fmt.Errorf("%w: index %d", ErrFaceVertexOutOfBounds, v)
	}
	mesh.Positions = append(mesh.Positions, pos[v*3], pos[v*3+1], pos[v*3+2])

	if len(tex) > 0 && vert.VT != MissingIndex {
		vt := vert.VT
		if vt < 0 || vt*2+1 >= len(tex) {
			return fmt.Errorf("%w: index %d", ErrFaceTexCoordOutOfBounds, vt)
		}
		mesh.TexCoords = append(mesh.TexCoords, tex[vt*2], tex[vt*2+1])
	}

	if len(norm) > 0 && vert.VN != MissingIndex {
		vn := vert.VN
		if vn < 0 || vn*3+2 >= len(norm) {
			return fmt.Errorf("%w: index %d", ErrFaceNormalOutOfBounds, vn)
		}
		mesh.Normals = append(mesh.Normals, norm[vn*3], norm[vn*3+1], norm[vn*3+2])
	}

	next := uint32(len(indexMap))
	mesh.Indices = append(mesh.Indices, next)
	indexMap[vert] = next
	return nil
}

// exportFaces triangulates the accumulated faces and exports them into a
// mesh with deduplicated vertices.
//
// Points and lines are recognized but skipped: they have no renderable area.
// Quads split along the fixed (0,1,2)/(0,2,3) diagonal. Larger polygons use
// a single triangle fan from the first vertex; the triangulation is only
// correct for convex planar polygons, which is all the format promises.
func exportFaces(pos, tex, norm []float32, faces []face, materialID int) (Mesh, error) {
	indexMap := make(map[VertexIndices]uint32)
	mesh := Mesh{MaterialID: materialID}

	for _, f := range faces {
		switch f.kind {
		case facePoint:
			logger.Warn("point faces are not supported")

		case faceLine:
			logger.Warn("line faces are not supported")

		case faceTriangle:
			for _, v := range f.verts {
				if err := addVertex(&mesh, indexMap, v, pos, norm, tex); err != nil {
					return Mesh{}, err
				}
			}

		case faceQuad:
			quad := [6]VertexIndices{
				f.verts[0], f.verts[1], f.verts[2],
				f.verts[0], f.verts[2], f.verts[3],
			}
			for _, v := range quad {
				if err := addVertex(&mesh, indexMap, v, pos, norm, tex); err != nil {
					return Mesh{}, err
				}
			}

		case facePolygon:
			if len(f.verts) < 3 {
				return Mesh{}, ErrInvalidPolygon
			}
			first := f.verts[0]
			for i := 1; i+1 < len(f.verts); i++ {
				for _, v := range [3]VertexIndices{first, f.verts[i], f.verts[i+1]} {
					if err := addVertex(&mesh, indexMap, v, pos, norm, tex); err != nil {
						return Mesh{}, err
					}
				}
			}
		}
	}

	return mesh, nil
}
