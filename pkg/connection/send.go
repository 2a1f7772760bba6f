package connection

import (
	"context"
	"fmt"
)

// Send performs method on c and decodes the result into res.
// A nil res discards the result.
func Send[Result any](c Connection, ctx context.Context, res *RPCResponse[Result], method RPCFunction, params ...any) error {
	rawRes, err := c.Send(ctx, string(method), params...)
	if err != nil {
		return err
	}

	if res == nil {
		return nil
	}

	if rawRes.ID != nil {
		res.ID = rawRes.ID
	}
	res.Error = rawRes.Error

	if rawRes.Result == nil {
		res.Result = nil
		return nil
	}

	var r Result

	data, err := rawRes.Result.MarshalCBOR()
	if err != nil {
		return fmt.Errorf("Send: error marshaling result: %w", err)
	}

	if err := c.GetUnmarshaler().Unmarshal(data, &r); err != nil {
		return fmt.Errorf("Send: error unmarshaling result: %w", err)
	}

	res.Result = &r

	return nil
}

// Call is Send for callers that only want the result value.
func Call[Result any](c Connection, ctx context.Context, method RPCFunction, params ...any) (Result, error) {
	var res RPCResponse[Result]
	var zero Result
	if err := Send(c, ctx, &res, method, params...); err != nil {
		return zero, err
	}
	if res.Result == nil {
		return zero, nil
	}
	return *res.Result, nil
}
