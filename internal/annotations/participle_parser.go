package annotations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	bgerrors "github.com/toyz/bindgen/internal/errors"
)

// Prefix marks a comment line as a bindgen directive
const Prefix = "//bindgen:"

// ParticipleParser parses directive option lists with alecthomas/participle
type ParticipleParser struct {
	parser   *participle.Parser[Options]
	registry AnnotationRegistry
}

// Options is the option list following the directive kind and target
type Options struct {
	Pairs []*KeyValuePair `parser:"@@*"`
}

// KeyValuePair is one key="value" option
type KeyValuePair struct {
	Pos   lexer.Position
	Key   string `parser:"@Ident '='"`
	Value string `parser:"@String"`
}

// directiveLexer tokenizes the option part of a directive
var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

// NewParticipleParser creates a new parser validating against registry.
// A nil registry skips schema validation.
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	parser := participle.MustBuild[Options](
		participle.Lexer(directiveLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)

	return &ParticipleParser{
		parser:   parser,
		registry: registry,
	}
}

// IsDirective reports whether a comment line is a bindgen directive
func IsDirective(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), Prefix)
}

// ParseAnnotation parses a single directive comment line
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	kind, rest, err := p.parseBasicStructure(comment)
	if err != nil {
		return nil, bgerrors.WrapSyntaxError("directive", location, err).WithConstruct(strings.TrimSpace(comment))
	}

	annotationType, err := ParseAnnotationType(kind)
	if err != nil {
		return nil, bgerrors.New(bgerrors.SyntaxErrorCode, "unknown directive").
			WithLocation(location).
			WithConstruct(strings.TrimSpace(comment)).
			WithSuggestion("known directives are //bindgen:invoke, //bindgen:events and //bindgen:skeleton")
	}

	target, remaining := "", rest
	if p.takesTarget(annotationType) {
		target, remaining = splitTarget(rest)
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Target:     target,
		Parameters: make(map[string]string),
		Location:   location,
		Raw:        comment,
	}

	if remaining != "" {
		options, err := p.parser.ParseString(location.File, remaining)
		if err != nil {
			return nil, bgerrors.WrapSyntaxError("directive options", location, err).WithConstruct(remaining)
		}

		for _, pair := range options.Pairs {
			if _, dup := parsed.Parameters[pair.Key]; dup {
				return nil, bgerrors.Newf(bgerrors.SyntaxErrorCode, "option '%s' given more than once", pair.Key).
					WithLocation(location)
			}
			parsed.Parameters[pair.Key] = pair.Value
		}
	}

	if p.registry != nil {
		if err := p.validateAgainstSchema(parsed); err != nil {
			return nil, err
		}
	}

	return parsed, nil
}

// parseBasicStructure splits a directive into its kind and the text after it
func (p *ParticipleParser) parseBasicStructure(comment string) (kind, rest string, err error) {
	comment = strings.TrimSpace(comment)

	if !strings.HasPrefix(comment, Prefix) {
		return "", "", fmt.Errorf("directive must start with '%s'", Prefix)
	}
	content := strings.TrimPrefix(comment, Prefix)

	kind, rest, _ = strings.Cut(content, " ")
	if kind == "" {
		return "", "", fmt.Errorf("empty directive")
	}

	return kind, strings.TrimSpace(rest), nil
}

// takesTarget reports whether the directive kind reads a positional target.
// Without a registry every kind may carry one.
func (p *ParticipleParser) takesTarget(annotationType AnnotationType) bool {
	if p.registry == nil {
		return true
	}
	schema, err := p.registry.GetSchema(annotationType)
	return err == nil && schema.TargetRequired
}

// splitTarget takes a leading word without '=' as the positional target
func splitTarget(rest string) (target, remaining string) {
	if rest == "" || strings.HasPrefix(rest, `"`) {
		return "", rest
	}
	word, after, _ := strings.Cut(rest, " ")
	if strings.Contains(word, "=") {
		return "", rest
	}
	return word, strings.TrimSpace(after)
}

// validateAgainstSchema checks target presence, option names and option values
func (p *ParticipleParser) validateAgainstSchema(parsed *ParsedAnnotation) error {
	schema, err := p.registry.GetSchema(parsed.Type)
	if err != nil {
		return bgerrors.New(bgerrors.SyntaxErrorCode, "directive is not registered").
			WithLocation(parsed.Location).
			WithCause(err)
	}

	if schema.TargetRequired && parsed.Target == "" {
		return bgerrors.Newf(bgerrors.TargetErrorCode, "//bindgen:%s requires an %s", parsed.Type, schema.TargetName).
			WithLocation(parsed.Location).
			WithSuggestion(fmt.Sprintf("for example: %s", firstExample(schema)))
	}
	if schema.TargetRequired {
		if err := ValidateIdentifier(parsed.Target); err != nil {
			return bgerrors.New(bgerrors.TargetErrorCode, "invalid target").
				WithLocation(parsed.Location).
				WithCause(err)
		}
	}

	for key, value := range parsed.Parameters {
		spec, known := schema.Parameters[key]
		if !known {
			return bgerrors.Newf(bgerrors.ConfigurationErrorCode, "unknown option '%s' for //bindgen:%s", key, parsed.Type).
				WithLocation(parsed.Location).
				WithSuggestion(fmt.Sprintf("valid options: %s", strings.Join(optionNames(schema), ", ")))
		}
		if spec.Validator == nil {
			continue
		}
		values := []string{value}
		if spec.Type == StringSliceType {
			values = splitList(value)
		}
		for _, v := range values {
			if err := spec.Validator(v); err != nil {
				return bgerrors.WrapConfigurationError(key, parsed.Location, err)
			}
		}
	}

	for key, spec := range schema.Parameters {
		if spec.Required && !parsed.HasParameter(key) {
			return bgerrors.Newf(bgerrors.ConfigurationErrorCode, "missing required option '%s'", key).
				WithLocation(parsed.Location)
		}
	}

	return nil
}

func optionNames(schema AnnotationSchema) []string {
	names := make([]string, 0, len(schema.Parameters))
	for name := range schema.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func firstExample(schema AnnotationSchema) string {
	if len(schema.Examples) == 0 {
		return ""
	}
	return schema.Examples[0]
}
