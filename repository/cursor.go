package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	serverError "github.com/supakorn-kn/go-ehr/errors"
)

type cursorToken struct {
	Offset int `json:"o"`
}

func encodeCursor(offset int) string {

	b, _ := json.Marshal(cursorToken{Offset: offset})
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(cursor string) (int, error) {

	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, serverError.PageCursorInvalidError.New(err)
	}

	var token cursorToken
	if err := json.Unmarshal(b, &token); err != nil {
		return 0, serverError.PageCursorInvalidError.New(err)
	}

	if token.Offset < 0 {
		return 0, serverError.PageCursorInvalidError.New(errors.New("negative offset"))
	}

	return token.Offset, nil
}
