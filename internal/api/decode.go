package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"fxledger/internal/domain"
)

// ErrBadRequest is wrapped by every decode failure.
var ErrBadRequest = errors.New("bad request")

// Pointer fields distinguish an absent key from a zero value.
type userRequestBody struct {
	UserID *string `json:"user_id"`
}

type orderRequestBody struct {
	UserID *string  `json:"user_id"`
	Source *string  `json:"source"`
	Target *string  `json:"target"`
	Value  *float64 `json:"value"`
	Price  *float64 `json:"price"`
}

func unmarshalBody(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func requireString(field string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: missing %s", ErrBadRequest, field)
	}
	return *v, nil
}

func requireNumber(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRequest, field)
	}
	return *v, nil
}

// decodeUserID parses a {"user_id": string} body. An empty id decodes; only
// registration rejects it.
func decodeUserID(body []byte) (string, error) {
	var req userRequestBody
	if err := unmarshalBody(body, &req); err != nil {
		return "", err
	}
	return requireString("user_id", req.UserID)
}

// decodeOrder parses an add_order body into a fully populated order.
func decodeOrder(body []byte) (domain.Order, error) {
	var req orderRequestBody
	if err := unmarshalBody(body, &req); err != nil {
		return domain.Order{}, err
	}

	var (
		o   domain.Order
		err error
	)
	if o.UserID, err = requireString("user_id", req.UserID); err != nil {
		return domain.Order{}, err
	}
	if o.Pair.Source, err = requireString("source", req.Source); err != nil {
		return domain.Order{}, err
	}
	if o.Pair.Target, err = requireString("target", req.Target); err != nil {
		return domain.Order{}, err
	}
	if o.Value, err = requireNumber("value", req.Value); err != nil {
		return domain.Order{}, err
	}
	if o.Price, err = requireNumber("price", req.Price); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
