// Command draco-encode is the thin CLI wrapper spec.md §6 names as a
// "collaborator of the core": it owns no codec logic itself, only flag
// parsing and handing bytes to draco.Encoder. Mesh/point-cloud file I/O
// (OBJ/PLY/FBX/glTF) is an explicit non-goal of the core, so this tool
// reads a minimal JSON scratch format instead of a real mesh format —
// just enough to drive the encoder from the command line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cocosip/draco-go/draco"
	"github.com/cocosip/draco-go/internal/mesh"
	"github.com/klauspost/compress/zstd"
)

type geometryDoc struct {
	Points [][]float64 `json:"points"`
	Faces  [][3]uint32 `json:"faces,omitempty"`
}

func main() {
	input := flag.String("i", "", "input geometry JSON file")
	output := flag.String("o", "", "output draco file")
	pointCloud := flag.Bool("point_cloud", false, "encode as a point cloud instead of a mesh")
	compressionLevel := flag.Int("cl", 7, "compression level 0..10")
	qp := flag.Int("qp", 14, "position quantization bits")
	qn := flag.Int("qn", 10, "normal quantization bits")
	qt := flag.Int("qt", 12, "texcoord quantization bits")
	qg := flag.Int("qg", 12, "generic attribute quantization bits")
	useZstd := flag.Bool("zstd", false, "wrap the output payload in an outer zstd envelope")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: draco-encode -i <input.json> -o <output.drc> [-point_cloud] [-cl N] [-qp N] [-qn N] [-qt N] [-qg N] [-zstd]")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draco-encode: %v\n", err)
		os.Exit(1)
	}
	var doc geometryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "draco-encode: %v\n", err)
		os.Exit(1)
	}

	opts := draco.NewEncodeOptions().WithCompressionLevel(*compressionLevel)
	opts.PositionQuantizationBits = *qp
	opts.NormalQuantizationBits = *qn
	opts.TexCoordQuantizationBits = *qt
	opts.GenericQuantizationBits = *qg

	enc := draco.NewEncoder()
	var payload []byte
	if *pointCloud {
		pc := mesh.NewPointCloud(uint32(len(doc.Points)))
		pos := &mesh.PointAttribute{Kind: mesh.AttributePosition, DataType: mesh.DataTypeFloat64, NumComponents: 3}
		for _, p := range doc.Points {
			pos.AppendValue(p)
		}
		pc.AddAttribute(pos)
		payload, err = enc.EncodePointCloud(pc, opts)
	} else {
		m := mesh.NewMesh(uint32(len(doc.Points)), len(doc.Faces))
		pos := &mesh.PointAttribute{Kind: mesh.AttributePosition, DataType: mesh.DataTypeFloat64, NumComponents: 3}
		for _, p := range doc.Points {
			pos.AppendValue(p)
		}
		m.Attributes = append(m.Attributes, pos)
		for _, f := range doc.Faces {
			m.Faces = append(m.Faces, mesh.Face(f))
		}
		payload, err = enc.EncodeMesh(m, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "draco-encode: %v\n", err)
		os.Exit(1)
	}

	if *useZstd {
		payload, err = zstdCompress(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "draco-encode: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(*output, payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "draco-encode: %v\n", err)
		os.Exit(1)
	}
}

func zstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}
