package utils

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// GenerateTransactionQR encodes an order's transaction id as a QR PNG,
// returned as a base64 data URL ready for an <img src="...">. Buyers show
// it to the seller at handoff instead of dictating the id.
func GenerateTransactionQR(transactionID string) (string, error) {
	png, err := qrcode.Encode(transactionID, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
