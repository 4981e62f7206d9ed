package content

import (
	"fmt"
	"strings"

	"github.com/Inkubator-IT/admin/internal/sanitize"
	"github.com/Inkubator-IT/admin/internal/validate"
)

// TagRequest is the create and update payload for a blog tag.
type TagRequest struct {
	TagName        string `json:"tag_name"`
	TagDescription string `json:"tag_description"`
}

func (r TagRequest) Sanitized(*sanitize.Policy) (Payload, sanitize.Stats) {
	return TagRequest{
		TagName:        sanitize.TagName(r.TagName),
		TagDescription: sanitize.TagDescription(r.TagDescription),
	}, sanitize.Stats{}
}

func (r TagRequest) Validate() error {
	var c validate.Collector
	c.Required("tag_name", r.TagName)
	return c.Err()
}

// ProjectRequest is the create and update payload for a portfolio project.
type ProjectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Owner        string   `json:"owner"`
	URL          string   `json:"url,omitempty"`
	Category     string   `json:"category"`
	Scope        string   `json:"scope"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	Images       []string `json:"images,omitempty"`
	Testimonial  string   `json:"testimonial"`
	TechStackIDs []int    `json:"tech_stack_ids,omitempty"`
}

// Sanitized cleans the free-text fields. A blank url is omitted rather than
// sent as an empty string, and blank image entries are dropped.
func (r ProjectRequest) Sanitized(*sanitize.Policy) (Payload, sanitize.Stats) {
	out := ProjectRequest{
		Title:        sanitize.Text(r.Title),
		Description:  sanitize.Text(r.Description),
		Owner:        sanitize.Text(r.Owner),
		Category:     sanitize.Text(r.Category),
		Scope:        sanitize.Text(r.Scope),
		Thumbnail:    imageRef(r.Thumbnail),
		Testimonial:  sanitize.Text(r.Testimonial),
		TechStackIDs: r.TechStackIDs,
	}
	if strings.TrimSpace(r.URL) != "" {
		out.URL = sanitize.Text(r.URL)
	}
	for _, img := range r.Images {
		if v := imageRef(img); v != "" {
			out.Images = append(out.Images, v)
		}
	}
	return out, sanitize.Stats{}
}

// Validate requires title, description, owner, category and scope. Inline
// image uploads are checked like file uploads.
func (r ProjectRequest) Validate() error {
	var c validate.Collector
	c.Required("title", r.Title)
	c.Required("description", r.Description)
	c.Required("owner", r.Owner)
	c.Required("category", r.Category)
	c.Required("scope", r.Scope)
	c.HTTPURL("url", r.URL)
	checkInlineImage(&c, "thumbnail", r.Thumbnail)
	for i, img := range r.Images {
		checkInlineImage(&c, fmt.Sprintf("images[%d]", i), img)
	}
	return c.Err()
}

// TechStackRequest is the create and update payload for a technology entry.
type TechStackRequest struct {
	TechStackName        string `json:"tech_stack_name"`
	TechStackDescription string `json:"tech_stack_description"`
}

func (r TechStackRequest) Sanitized(*sanitize.Policy) (Payload, sanitize.Stats) {
	return TechStackRequest{
		TechStackName:        sanitize.Text(r.TechStackName),
		TechStackDescription: sanitize.Text(r.TechStackDescription),
	}, sanitize.Stats{}
}

func (r TechStackRequest) Validate() error {
	var c validate.Collector
	c.Required("tech_stack_name", r.TechStackName)
	return c.Err()
}

// ServiceRequest is the create and update payload for an offered service.
type ServiceRequest struct {
	ServiceName        string `json:"service_name"`
	ServiceDescription string `json:"service_description"`
}

func (r ServiceRequest) Sanitized(*sanitize.Policy) (Payload, sanitize.Stats) {
	return ServiceRequest{
		ServiceName:        sanitize.Text(r.ServiceName),
		ServiceDescription: sanitize.Text(r.ServiceDescription),
	}, sanitize.Stats{}
}

func (r ServiceRequest) Validate() error {
	var c validate.Collector
	c.Required("service_name", r.ServiceName)
	return c.Err()
}

// ClientInformationRequest is the intake form a prospective client submits.
type ClientInformationRequest struct {
	NamaLengkap           string `json:"nama_lengkap"`
	Email                 string `json:"email"`
	NoWhatsapp            string `json:"no_whatsapp"`
	Instansi              string `json:"instansi"`
	CivitasITB            bool   `json:"civitas_itb"`
	JenisProyek           string `json:"jenis_proyek"`
	TujuanPembuatanProyek string `json:"tujuan_pembuatan_proyek"`
	DeskripsiProyek       string `json:"deskripsi_proyek"`
	EkspetasiBiaya        string `json:"ekspetasi_biaya"`
	DeadlineProyek        string `json:"deadline_proyek"`
	SudahMemilikiDesain   bool   `json:"sudah_memiliki_desain"`
	PertanyaanUntukProyek string `json:"pertanyaan_untuk_proyek"`
	DimanaMengetahuiIIT   string `json:"dimana_mengetahui_iit"`
	RatingWebsite         int    `json:"rating_website"`
	MasukanWebsite        string `json:"masukan_website"`
	KodePromo             string `json:"kode_promo"`
}

// MaxRating is the top of the website rating scale.
const MaxRating = 5

func (r ClientInformationRequest) Sanitized(*sanitize.Policy) (Payload, sanitize.Stats) {
	out := r
	for _, f := range []*string{
		&out.NamaLengkap, &out.Email, &out.NoWhatsapp, &out.Instansi,
		&out.JenisProyek, &out.TujuanPembuatanProyek, &out.DeskripsiProyek,
		&out.EkspetasiBiaya, &out.DeadlineProyek, &out.PertanyaanUntukProyek,
		&out.DimanaMengetahuiIIT, &out.MasukanWebsite, &out.KodePromo,
	} {
		*f = sanitize.Text(*f)
	}
	return out, sanitize.Stats{}
}

// Validate requires a name and a plausible email, and bounds the rating.
func (r ClientInformationRequest) Validate() error {
	var c validate.Collector
	c.Required("nama_lengkap", r.NamaLengkap)
	if c.Required("email", r.Email) {
		c.Email("email", r.Email)
	}
	c.Range("rating_website", r.RatingWebsite, 0, MaxRating)
	return c.Err()
}
