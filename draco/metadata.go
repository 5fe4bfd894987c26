package draco

import (
	"sort"

	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// normalizeMetadataString runs a metadata value through a UTF-8 decoder
// configured to replace ill-formed byte sequences, so a caller-supplied
// map[string]string built from untrusted sources never round-trips invalid
// UTF-8 into the metadata block (spec.md §6 "metadata block").
func normalizeMetadataString(s string) (string, error) {
	decoder := unicode.UTF8.NewDecoder()
	out, _, err := transform.String(decoder, s)
	if err != nil {
		return "", draerr.DracoErrorf("draco.normalizeMetadataString", err)
	}
	return out, nil
}

func encodeMetadata(buf *ioutil.EncoderBuffer, entries map[string]string) error {
	buf.EncodeVarint(uint64(len(entries)))
	keys := sortedKeys(entries)
	for _, k := range keys {
		nk, err := normalizeMetadataString(k)
		if err != nil {
			return err
		}
		nv, err := normalizeMetadataString(entries[k])
		if err != nil {
			return err
		}
		writeMetaString(buf, nk)
		writeMetaString(buf, nv)
	}
	return nil
}

func decodeMetadata(dec *ioutil.DecoderBuffer) (map[string]string, error) {
	n, err := dec.DecodeVarint()
	if err != nil {
		return nil, draerr.IOErrorf("draco.decodeMetadata", err)
	}
	out := make(map[string]string, n)
	for i := uint64(0); i < n; i++ {
		k, err := readMetaString(dec)
		if err != nil {
			return nil, err
		}
		v, err := readMetaString(dec)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func writeMetaString(buf *ioutil.EncoderBuffer, s string) {
	buf.EncodeVarint(uint64(len(s)))
	buf.EncodeBytes([]byte(s))
}

func readMetaString(dec *ioutil.DecoderBuffer) (string, error) {
	n, err := dec.DecodeVarint()
	if err != nil {
		return "", draerr.IOErrorf("draco.readMetaString", err)
	}
	b, err := dec.DecodeBytes(int(n))
	if err != nil {
		return "", draerr.IOErrorf("draco.readMetaString", err)
	}
	return string(b), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
