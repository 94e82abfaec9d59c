// Package pdfinspect reads page content streams back out of generated PDFs
// so tests can assert on drawing order.
package pdfinspect

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	objectRE = regexp.MustCompile(`(?m)^(\d+)\s+\d+\s+obj`)
	refRE    = regexp.MustCompile(`(\d+)\s+\d+\s+R`)
	lengthRE = regexp.MustCompile(`/Length\s+(\d+)`)
	kidsRE   = regexp.MustCompile(`/Kids\s*\[([^\]]*)\]`)
)

// Pages returns the decoded content stream of every page in page order.
func Pages(data []byte) ([][]byte, error) {
	objects, err := collectObjects(data)
	if err != nil {
		return nil, err
	}
	var kids [][]byte
	for _, obj := range objects {
		if bytes.Contains(obj, []byte("/Type /Pages")) {
			m := kidsRE.FindSubmatch(obj)
			if m == nil {
				return nil, errors.New("pages object without /Kids")
			}
			for _, ref := range refRE.FindAllSubmatch(m[1], -1) {
				kids = append(kids, ref[1])
			}
			break
		}
	}
	if len(kids) == 0 {
		return nil, errors.New("no pages found")
	}
	out := make([][]byte, 0, len(kids))
	for _, kid := range kids {
		num, _ := strconv.Atoi(string(kid))
		pageObj, ok := objects[num]
		if !ok {
			return nil, fmt.Errorf("missing page object %d", num)
		}
		idx := bytes.Index(pageObj, []byte("/Contents"))
		if idx == -1 {
			return nil, fmt.Errorf("page %d has no /Contents", num)
		}
		ref := refRE.FindSubmatch(pageObj[idx:])
		if ref == nil {
			return nil, fmt.Errorf("page %d: unreadable /Contents", num)
		}
		contentNum, _ := strconv.Atoi(string(ref[1]))
		contentObj, ok := objects[contentNum]
		if !ok {
			return nil, fmt.Errorf("missing content object %d", contentNum)
		}
		stream, err := streamData(contentObj)
		if err != nil {
			return nil, fmt.Errorf("content object %d: %w", contentNum, err)
		}
		out = append(out, stream)
	}
	return out, nil
}

func collectObjects(data []byte) (map[int][]byte, error) {
	matches := objectRE.FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return nil, errors.New("no objects found")
	}
	objects := make(map[int][]byte, len(matches))
	for i, m := range matches {
		objNum, err := strconv.Atoi(string(data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		end := len(data)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		objects[objNum] = data[m[0]:end]
	}
	return objects, nil
}

func streamData(obj []byte) ([]byte, error) {
	dictStart := bytes.Index(obj, []byte("<<"))
	if dictStart == -1 {
		return nil, errors.New("missing stream dictionary")
	}
	dictEnd := matchDictEnd(obj, dictStart)
	if dictEnd == -1 {
		return nil, errors.New("unterminated stream dictionary")
	}
	dict := obj[dictStart : dictEnd+2]
	m := lengthRE.FindSubmatch(dict)
	if m == nil {
		return nil, errors.New("missing /Length")
	}
	length, _ := strconv.Atoi(string(m[1]))
	rest := obj[dictEnd+2:]
	kw := bytes.Index(rest, []byte("stream"))
	if kw == -1 {
		return nil, errors.New("missing stream keyword")
	}
	start := kw + len("stream")
	if start < len(rest) && rest[start] == '\r' {
		start++
	}
	if start < len(rest) && rest[start] == '\n' {
		start++
	}
	if start+length > len(rest) {
		return nil, errors.New("stream shorter than /Length")
	}
	raw := rest[start : start+length]
	if !bytes.Contains(dict, []byte("/FlateDecode")) {
		return raw, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func matchDictEnd(data []byte, start int) int {
	depth := 0
	for i := start; i+1 < len(data); i++ {
		if data[i] == '<' && data[i+1] == '<' {
			depth++
			i++
			continue
		}
		if data[i] == '>' && data[i+1] == '>' {
			depth--
			if depth == 0 {
				return i
			}
			i++
			continue
		}
	}
	return -1
}
