package content

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Inkubator-IT/admin/internal/sanitize"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Café <b>Déjà</b> vu!  ", "cafe-deja-vu"},
		{"Go 1.23 -- release notes", "go-1-23-release-notes"},
		{"---", ""},
		{"already-a-slug", "already-a-slug"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Fatalf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateImage(t *testing.T) {
	if err := ValidateImage("image/png", 1024); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := ValidateImage("application/pdf", 1024); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for non-image, got %v", err)
	}
	err := ValidateImage("image/jpeg", MaxImageBytes+1)
	if err == nil || !strings.Contains(err.Error(), "10 MB") {
		t.Fatalf("expected size error, got %v", err)
	}
	if err := ValidateImage("image/jpeg", MaxImageBytes); err != nil {
		t.Fatalf("exact cap must pass: %v", err)
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	if _, err := Decode("widget", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := Decode(KindTag, []byte(`{"tag_name": 5}`)); err == nil {
		t.Fatal("expected decode error for mistyped field")
	}
}

func TestTagRequest_Caps(t *testing.T) {
	p, err := Decode(KindTag, []byte(`{"tag_name":"<i>`+strings.Repeat("n", 150)+`</i>","tag_description":"`+strings.Repeat("d", 600)+`"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, _ := p.Sanitized(sanitize.DefaultPolicy())
	tag := out.(TagRequest)
	if len(tag.TagName) != sanitize.TagNameLimit || strings.Contains(tag.TagName, "<") {
		t.Fatalf("tag name not capped or cleaned: %d", len(tag.TagName))
	}
	if len(tag.TagDescription) != sanitize.TagDescriptionLimit {
		t.Fatalf("description length = %d", len(tag.TagDescription))
	}
	if err := (TagRequest{}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected required tag_name, got %v", err)
	}
}

func TestProjectRequest_SanitizeAndValidate(t *testing.T) {
	in := ProjectRequest{
		Title:       "<script>x</script>Site",
		Description: "desc &amp; more",
		Owner:       "Owner",
		URL:         "   ",
		Category:    "web",
		Scope:       "full",
		Images:      []string{"https://cdn.example.com/a.png", "  ", "<b></b>"},
		Testimonial: "great",
	}
	out, _ := in.Sanitized(nil)
	pr := out.(ProjectRequest)
	if pr.Title != "xSite" {
		t.Fatalf("title = %q", pr.Title)
	}
	if pr.Description != "desc  more" {
		t.Fatalf("description = %q", pr.Description)
	}
	if pr.URL != "" {
		t.Fatalf("blank url should be omitted, got %q", pr.URL)
	}
	b, _ := json.Marshal(pr)
	if strings.Contains(string(b), `"url"`) {
		t.Fatalf("url key should be omitted: %s", b)
	}
	if len(pr.Images) != 1 {
		t.Fatalf("expected one image, got %v", pr.Images)
	}
	if err := pr.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	err := ProjectRequest{Title: "t"}.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := strings.Join(ve.Fields(), ","); got != "description,owner,category,scope" {
		t.Fatalf("fields = %q", got)
	}
}

func TestClientInformationRequest(t *testing.T) {
	in := ClientInformationRequest{
		NamaLengkap:   "<b>Budi</b>",
		Email:         "budi@example.com",
		RatingWebsite: 4,
		KodePromo:     "<img src=x onerror=alert(1)>PROMO",
	}
	out, _ := in.Sanitized(nil)
	cl := out.(ClientInformationRequest)
	if cl.NamaLengkap != "Budi" || cl.KodePromo != "PROMO" {
		t.Fatalf("unexpected sanitize result: %+v", cl)
	}
	if err := cl.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	bad := ClientInformationRequest{NamaLengkap: "x", Email: "nope", RatingWebsite: 9}
	var ve *ValidationError
	if err := bad.Validate(); !errors.As(err, &ve) || strings.Join(ve.Fields(), ",") != "email,rating_website" {
		t.Fatalf("unexpected validation result: %v", err)
	}
}

func TestTechStackAndService(t *testing.T) {
	ts, _ := TechStackRequest{TechStackName: " Go ", TechStackDescription: "<p>lang</p>"}.Sanitized(nil)
	if got := ts.(TechStackRequest); got.TechStackName != "Go" || got.TechStackDescription != "lang" {
		t.Fatalf("tech stack = %+v", got)
	}
	if err := (ServiceRequest{ServiceDescription: "x"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected required service_name, got %v", err)
	}
}

func TestResponseEnvelope(t *testing.T) {
	b, _ := json.Marshal(OK(TagRequest{TagName: "go"}, "created"))
	if string(b) != `{"success":true,"data":{"tag_name":"go","tag_description":""},"message":"created"}` {
		t.Fatalf("ok envelope = %s", b)
	}
	b, _ = json.Marshal(Fail[*TagRequest](errors.New("boom"), ""))
	if string(b) != `{"success":false,"error":"boom"}` {
		t.Fatalf("fail envelope = %s", b)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(KindTag, []byte(`{"tag_name":"x","tag_description":42}`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("decode failures are not validation failures")
	}
}

// Inline uploads survive sanitizing intact and are held to the upload rules.
func TestProjectRequest_InlineImages(t *testing.T) {
	small := "data:image/png;base64," + strings.Repeat("A", 20000)
	in := ProjectRequest{
		Title: "t", Description: "d", Owner: "o", Category: "c", Scope: "s",
		Thumbnail: small,
		Images:    []string{small},
	}
	out, _ := in.Sanitized(nil)
	pr := out.(ProjectRequest)
	if pr.Thumbnail != small || len(pr.Images) != 1 || pr.Images[0] != small {
		t.Fatalf("inline image altered by sanitizing")
	}
	if err := pr.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	huge := "data:image/jpeg;base64," + strings.Repeat("A", MaxImageBytes/3*4+8)
	bad := pr
	bad.Images = []string{"https://cdn.example.com/a.png", huge}
	bad.Thumbnail = "data:text/html;base64,PHNjcmlwdD4="
	var ve *ValidationError
	if err := bad.Validate(); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := strings.Join(ve.Fields(), ","); got != "thumbnail,images[1]" {
		t.Fatalf("fields = %q", got)
	}

	script := "data:image/svg+xml,<svg onload=alert(1)>"
	out, _ = ProjectRequest{Thumbnail: script}.Sanitized(nil)
	if got := out.(ProjectRequest).Thumbnail; strings.Contains(got, "<") {
		t.Fatalf("markup in inline image kept: %q", got)
	}
}
