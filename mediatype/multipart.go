package mediatype

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/erraggy/oasguard/internal/jsonlit"
	"github.com/erraggy/oasguard/oaserrors"
)

// multipartAnalyser decodes multipart/form-data bodies. Checking splits the
// body into parts; Transform decodes each part by its declared content type.
type multipartAnalyser struct {
	in Input
}

type rawPart struct {
	name        string
	contentType string
	data        []byte
}

type checkedMultipart struct {
	in    Input
	parts []rawPart
}

func (a *multipartAnalyser) CheckSyntacticalCorrectness() (Checked, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.in.ContentType)), "multipart/form-data") {
		return nil, bodyError(oaserrors.KindMissingParameter, a.in.Direction, "", "content type %q is not multipart/form-data", a.in.ContentType)
	}
	boundary := a.in.Info.Param("boundary")
	if strings.TrimSpace(boundary) == "" {
		return nil, bodyError(oaserrors.KindMissingParameter, a.in.Direction, "", "multipart content type has no boundary")
	}

	reader := multipart.NewReader(bytes.NewReader(a.in.Body), boundary)
	var parts []rawPart
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e := bodyError(oaserrors.KindIllegalValue, a.in.Direction, "", "body can't be decoded")
			e.Cause = err
			return nil, e
		}
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			e := bodyError(oaserrors.KindIllegalValue, a.in.Direction, part.FormName(), "part can't be read")
			e.Cause = err
			return nil, e
		}
		parts = append(parts, rawPart{
			name:        part.FormName(),
			contentType: part.Header.Get("Content-Type"),
			data:        data,
		})
	}
	return &checkedMultipart{in: a.in, parts: parts}, nil
}

// Transform builds an object keyed by part name. Parts with an empty body or
// no name are skipped; repeated names become arrays.
func (c *checkedMultipart) Transform() (any, error) {
	collected := make(map[string][]any, len(c.parts))
	for _, p := range c.parts {
		if len(p.data) == 0 || p.name == "" {
			continue
		}
		v, err := c.decodePart(p)
		if err != nil {
			return nil, err
		}
		collected[p.name] = append(collected[p.name], v)
	}

	out := make(map[string]any, len(collected))
	for name, values := range collected {
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = values
		}
	}
	return out, nil
}

func (c *checkedMultipart) decodePart(p rawPart) (any, error) {
	ct := p.contentType
	if ct == "" {
		ct = "text/plain"
	}
	info, err := Of(ct)
	if err != nil {
		return nil, bodyError(oaserrors.KindUnsupportedValueFormat, c.in.Direction, p.name, "part %q has malformed content type %q", p.name, ct)
	}

	switch {
	case info.Type == "text" && info.Subtype == "plain" && info.Suffix == "":
		data, err := toUTF8(p.data, info.Param("charset"))
		if err != nil {
			e := bodyError(oaserrors.KindUnsupportedValueFormat, c.in.Direction, p.name, "part %q charset %q is not supported", p.name, info.Param("charset"))
			e.Cause = err
			return nil, e
		}
		v, err := jsonlit.DecodeText(string(data))
		if err != nil {
			e := bodyError(oaserrors.KindCannotDecodeValue, c.in.Direction, p.name, "part %q can't be decoded", p.name)
			e.Cause = err
			return nil, e
		}
		return v, nil

	case info.Type == "application" && (info.Subtype == "json" && info.Suffix == "" || info.Suffix == "json"):
		data, err := toUTF8(p.data, info.Param("charset"))
		if err != nil {
			e := bodyError(oaserrors.KindUnsupportedValueFormat, c.in.Direction, p.name, "part %q charset %q is not supported", p.name, info.Param("charset"))
			e.Cause = err
			return nil, e
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			e := bodyError(oaserrors.KindIllegalValue, c.in.Direction, p.name, "part %q can't be decoded", p.name)
			e.Cause = err
			return nil, e
		}
		return v, nil

	case info.FullType() == "application/octet-stream":
		return p.data, nil

	default:
		return nil, bodyError(oaserrors.KindUnsupportedValueFormat, c.in.Direction, p.name, "part %q has unsupported content type %q", p.name, info.FullType())
	}
}
