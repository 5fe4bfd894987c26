// Command draco-decode is the inverse CLI wrapper of draco-encode: it
// reads a Draco stream and writes back the same minimal JSON scratch
// format draco-encode accepts (see that command's doc comment for why
// this is not a real mesh file format).
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
	input := flag.String("i", "", "input draco file")
	output := flag.String("o", "", "output geometry JSON file")
	pointCloud := flag.Bool("point_cloud", false, "decode as a point cloud instead of a mesh")
	useZstd := flag.Bool("zstd", false, "input payload is wrapped in an outer zstd envelope")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: draco-decode -i <input.drc> -o <output.json> [-point_cloud] [-zstd]")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draco-decode: %v\n", err)
		os.Exit(1)
	}
	if *useZstd {
		raw, err = zstdDecompress(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "draco-decode: %v\n", err)
			os.Exit(1)
		}
	}

	dec := draco.NewDecoder()
	var doc geometryDoc
	if *pointCloud {
		pc, err := dec.DecodePointCloud(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "draco-decode: %v\n", err)
			os.Exit(1)
		}
		doc.Points = pointsFromAttribute(pc.AttributeByKind(mesh.AttributePosition))
	} else {
		m, err := dec.DecodeMesh(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "draco-decode: %v\n", err)
			os.Exit(1)
		}
		doc.Points = pointsFromAttribute(m.AttributeByKind(mesh.AttributePosition))
		for _, f := range m.Faces {
			doc.Faces = append(doc.Faces, [3]uint32(f))
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "draco-decode: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "draco-decode: %v\n", err)
		os.Exit(1)
	}
}

func pointsFromAttribute(a *mesh.PointAttribute) [][]float64 {
	if a == nil {
		return nil
	}
	out := make([][]float64, a.NumValues())
	for i := range out {
		out[i] = a.ValueAt(uint32(i))
	}
	return out
}

func zstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
