// Package shortlink はレシピIDと短縮コードの相互変換、および短縮リンクの解決を提供する。
package shortlink

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// ErrInvalidCode は短縮コードがこのコーデックで生成されたものではないことを表す。
var ErrInvalidCode = errors.New("shortlink: invalid code")

// Codec はhashidsによるレシピIDと短縮コードの可逆変換を行う。
// 同じsaltとminLengthであればプロセスをまたいでも同じコードになる。
type Codec struct {
	h *hashids.HashID
}

// NewCodec はCodecを生成する。
func NewCodec(salt string, minLength int) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("failed to create hashids codec: %w", err)
	}
	return &Codec{h: h}, nil
}

// Encode はレシピIDを短縮コードに変換する。IDは正の値であること。
func (c *Codec) Encode(id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("shortlink: id must be positive: %d", id)
	}
	code, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("failed to encode id %d: %w", id, err)
	}
	return code, nil
}

// Decode は短縮コードをレシピIDに変換する。
// 別のsaltで生成されたコードや改変されたコードはErrInvalidCodeを返す。
func (c *Codec) Decode(code string) (int64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 || ids[0] <= 0 {
		return 0, ErrInvalidCode
	}
	return ids[0], nil
}
