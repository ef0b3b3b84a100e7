package form

import (
	"testing"

	appErrors "formdeck/internal/errors"
)

const demoFields = `
text: {type: text, label: Text Field}
number: {type: number, label: Number Field, defaultValue: 3}
flag: {type: flag, label: Flag Field, defaultValue: false}
conditionalText: {type: text, label: Conditional Text Field, conditional: flag}
page: {type: page, label: Page Field}
block: {type: block, label: Block Field}
select:
  type: select
  label: Select Field
  options: [apple, banana, orange, conditional select 1]
conditionalSelect:
  type: text
  label: Conditional Select Field
  conditional: select
  conditionalValues: [conditional select 1]
autocomplete: {type: autocomplete, label: Autocomplete Field, options: [apple, banana, orange]}
embed: {type: embed, label: Embed Field, defaultValue: hello}
`

func TestParseFields(t *testing.T) {
	t.Run("PreservesOrder", func(t *testing.T) {
		fields, err := ParseFields([]byte(demoFields))
		if err != nil {
			t.Fatalf("ParseFields: %v", err)
		}
		want := []string{"text", "number", "flag", "conditionalText", "page", "block", "select", "conditionalSelect", "autocomplete", "embed"}
		got := fields.Names()
		if len(got) != len(want) {
			t.Fatalf("expected %d fields, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("field %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("TypedDefaults", func(t *testing.T) {
		fields, err := ParseFields([]byte(demoFields))
		if err != nil {
			t.Fatalf("ParseFields: %v", err)
		}
		number, _ := fields.Lookup("number")
		if number.Default == nil || number.Default.Type() != TypeNumber || number.Default.Num() != 3 {
			t.Fatalf("unexpected number default %+v", number.Default)
		}
		flag, _ := fields.Lookup("flag")
		if flag.Default == nil || flag.Default.Type() != TypeBool || flag.Default.Flag() {
			t.Fatalf("unexpected flag default %+v", flag.Default)
		}
		text, _ := fields.Lookup("text")
		if text.Default != nil {
			t.Fatalf("expected no text default, got %+v", text.Default)
		}
		sel, _ := fields.Lookup("select")
		if len(sel.Options) != 4 {
			t.Fatalf("expected 4 select options, got %v", sel.Options)
		}
	})

	t.Run("ScalarDefaultPerKind", func(t *testing.T) {
		tests := []struct {
			src  string
			want Value
		}{
			{`n: {type: number, defaultValue: 3}`, Number(3)},
			{`n: {type: number, defaultValue: 2.5}`, Number(2.5)},
			{`n: {type: flag, defaultValue: false}`, Bool(false)},
			{`n: {type: flag, defaultValue: true}`, Bool(true)},
			{`n: {type: text, defaultValue: hi}`, String("hi")},
			{`n: {type: embed, defaultValue: "hello world"}`, String("hello world")},
		}
		for _, tt := range tests {
			fields, err := ParseFields([]byte(tt.src))
			if err != nil {
				t.Fatalf("%s: %v", tt.src, err)
			}
			d, _ := fields.Lookup("n")
			if d.Default == nil || !d.Default.Equal(tt.want) {
				t.Fatalf("%s: expected default %+v, got %+v", tt.src, tt.want, d.Default)
			}
		}
	})

	t.Run("NullDefaultIsAbsent", func(t *testing.T) {
		fields, err := ParseFields([]byte(`n: {type: text, defaultValue: null}`))
		if err != nil {
			t.Fatal(err)
		}
		if d, _ := fields.Lookup("n"); d.Default != nil {
			t.Fatalf("expected no default, got %+v", d.Default)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		fields, err := ParseFields([]byte(`{"b": {"type": "text", "defaultValue": "x"}, "a": {"type": "flag", "defaultValue": true}}`))
		if err != nil {
			t.Fatalf("ParseFields: %v", err)
		}
		if names := fields.Names(); names[0] != "b" || names[1] != "a" {
			t.Fatalf("expected JSON key order preserved, got %v", names)
		}
	})

	t.Run("QuotedNumberIsText", func(t *testing.T) {
		fields, err := ParseFields([]byte(`code: {type: text, defaultValue: "042"}`))
		if err != nil {
			t.Fatalf("ParseFields: %v", err)
		}
		d, _ := fields.Lookup("code")
		if d.Default.Str() != "042" {
			t.Fatalf("expected string default 042, got %+v", d.Default)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		fields, err := ParseFields(nil)
		if err != nil || len(fields) != 0 {
			t.Fatalf("expected empty fields, got %v, %v", fields, err)
		}
	})
}

func TestParseFieldsConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"UnknownType":          `info: {type: info, label: Read Only}`,
		"DefaultTypeMismatch":  `flag: {type: flag, defaultValue: "yes"}`,
		"NumberGivenText":      `n: {type: number, defaultValue: abc}`,
		"MissingSibling":       `a: {type: text, conditional: nope}`,
		"SelfConditional":      `a: {type: flag, conditional: a}`,
		"ValuesWithoutSibling": `a: {type: text, conditionalValues: [x]}`,
		"NotAMapping":          `[a, b]`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFields([]byte(input))
			if err == nil {
				t.Fatal("expected configuration error")
			}
			if !appErrors.IsCode(err, appErrors.CodeConfigurationError) {
				t.Fatalf("expected configuration_error code, got %v (%v)", appErrors.CodeOf(err), err)
			}
		})
	}
}

func TestFieldsValidate(t *testing.T) {
	t.Run("Duplicate", func(t *testing.T) {
		err := Fields{{Name: "a", Kind: KindText}, {Name: "a", Kind: KindFlag}}.Validate()
		if !appErrors.IsCode(err, appErrors.CodeConfigurationError) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		err := Fields{{Name: "a", Kind: Kind("info")}}.Validate()
		if !appErrors.IsCode(err, appErrors.CodeConfigurationError) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		def := Bool(true)
		err := Fields{
			{Name: "flag", Kind: KindFlag, Default: &def},
			{Name: "dep", Kind: KindText, Conditional: "flag"},
		}.Validate()
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	})
}

func TestDescriptorTitle(t *testing.T) {
	if got := (Descriptor{Name: "n"}).Title(); got != "n" {
		t.Errorf("expected name fallback, got %q", got)
	}
	if got := (Descriptor{Name: "n", Label: "Name"}).Title(); got != "Name" {
		t.Errorf("expected label, got %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(" " + string(k) + " ")
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, ok)
		}
	}
	if _, ok := ParseKind("info"); ok {
		t.Error("expected info to be rejected")
	}
}
