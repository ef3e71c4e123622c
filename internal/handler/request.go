package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/sakif/postboard/internal/apperror"
)

// maxBodyBytes caps request bodies. Posts and credentials are tiny.
const maxBodyBytes = 64 << 10

// formRequest is a request body that can also arrive as an HTML form.
type formRequest interface {
	fromForm(values url.Values)
}

// decodeBody reads a JSON or application/x-www-form-urlencoded body into dst.
//
// An empty body leaves dst zero-valued so the field checks downstream report
// what is missing. A malformed body is a validation error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst formRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return apperror.ValidationFailed("", "Invalid request body")
		}
		dst.fromForm(r.PostForm)
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.ValidationFailed("", "Invalid request body")
	}
	return nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) fromForm(v url.Values) {
	req.Name = v.Get("name")
	req.Surname = v.Get("surname")
	req.Email = v.Get("email")
	req.Password = v.Get("password")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) fromForm(v url.Values) {
	req.Email = v.Get("email")
	req.Password = v.Get("password")
}

type createPostRequest struct {
	Content string `json:"content"`
}

func (req *createPostRequest) fromForm(v url.Values) {
	req.Content = v.Get("content")
}
