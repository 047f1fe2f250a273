package extract

import (
	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/format"
	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
)

// structured re-serializes data formats as indented JSON (XML is re-indented).
// Any parse failure passes the text through unchanged.
func structured(ct classify.ContentType, text string) string {
	var (
		out []byte
		err error
	)
	input := []byte(text)
	switch ct {
	case classify.YAML:
		out, err = format.YAMLToJSON(input, format.DefaultIndent)
	case classify.JSON:
		out, err = format.PrettifyJSON(input, format.DefaultIndent)
	case classify.TOML:
		out, err = format.TOMLToJSON(input, format.DefaultIndent)
	case classify.XML:
		out, err = format.PrettifyXML(input, format.DefaultIndent)
	default:
		return text
	}
	if err != nil {
		logger.Debug("structured parse failed, passing through", logger.String("type", string(ct)), logger.Err(err))
		return text
	}
	return string(out)
}
