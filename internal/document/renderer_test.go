package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/png"
	"testing"
	"time"

	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeQR(t *testing.T, png []byte) string {
	t.Helper()

	img, _, err := image.Decode(bytes.NewReader(png))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)

	return result.GetText()
}

func TestEncodeQR_RoundTrip(t *testing.T) {
	png, err := EncodeQR("BC-2024-7", QRSize)
	require.NoError(t, err)
	assert.Equal(t, "BC-2024-7", decodeQR(t, png))
}

func TestEncodeQR_EmptyContent(t *testing.T) {
	_, err := EncodeQR("", QRSize)
	assert.Error(t, err)
}

func fixedClock() time.Time {
	return time.Date(2024, time.April, 17, 10, 0, 0, 0, time.UTC)
}

func sampleRequest() *types.Request {
	return &types.Request{
		ID:        7,
		UserID:    "user-1",
		Type:      types.DocumentTypeBarangayClearance,
		Status:    types.RequestStatusApproved,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Age:       30,
		Address:   "Purok 3, Sitio Tabay",
		Purpose:   utils.StringPtr("employment"),
	}
}

func testOffice() types.Office {
	return types.Office{
		Province:       "Cebu",
		Municipality:   "Cebu City",
		Barangay:       "Busay",
		PunongBarangay: "ENGR LAURON",
		Secretary:      "MAM BUHAWE",
		IssuedAt:       "Busay, Cebu City",
	}
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer(testOffice(), WithClock(fixedClock))
	require.NoError(t, err)

	artifact, err := r.Render(Input{Request: sampleRequest()})
	require.NoError(t, err)

	assert.Equal(t, "BarangayClearance-DelaCruz.pdf", artifact.Filename)
	assert.Equal(t, "BC-2024-7", artifact.ReferenceNumber)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.True(t, bytes.HasPrefix(artifact.Bytes, []byte("%PDF-")))

	decoded, err := base64.StdEncoding.DecodeString(artifact.Base64())
	require.NoError(t, err)
	assert.Equal(t, artifact.Bytes, decoded)
}

func TestRenderer_RenderEveryType(t *testing.T) {
	r, err := NewRenderer(testOffice(), WithClock(fixedClock))
	require.NoError(t, err)

	for _, docType := range types.DocumentTypes {
		t.Run(string(docType), func(t *testing.T) {
			req := sampleRequest()
			req.Type = docType
			req.BusinessName = utils.StringPtr("Sari-Sari ni Juan")
			req.ResidencyDuration = utils.StringPtr("10 years")
			req.CharacterReference = utils.StringPtr("Pastor José Peña")

			artifact, err := r.Render(Input{Request: req})
			require.NoError(t, err)
			assert.Equal(t, ReferenceNumber(docType, 2024, 7), artifact.ReferenceNumber)
			assert.NotEmpty(t, artifact.Bytes)
		})
	}
}

func TestRenderer_WithSignatureAndSeals(t *testing.T) {
	png, err := EncodeQR("seal", 64)
	require.NoError(t, err)

	r, err := NewRenderer(testOffice(), WithClock(fixedClock), WithSeals(png, png))
	require.NoError(t, err)

	artifact, err := r.Render(Input{Request: sampleRequest(), Signature: png})
	require.NoError(t, err)
	assert.NotEmpty(t, artifact.Bytes)
}

func TestRenderer_QRFailureIsRenderError(t *testing.T) {
	failing := func(string, int) ([]byte, error) {
		return nil, errors.New("encoder unavailable")
	}

	r, err := NewRenderer(testOffice(), WithClock(fixedClock), WithQREncoder(failing))
	require.NoError(t, err)

	artifact, err := r.Render(Input{Request: sampleRequest()})
	assert.Nil(t, artifact)

	var renderErr *types.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "qr", renderErr.Stage)
}

func TestRenderer_BadQRImageIsRenderError(t *testing.T) {
	garbage := func(string, int) ([]byte, error) {
		return []byte("not an image"), nil
	}

	r, err := NewRenderer(testOffice(), WithClock(fixedClock), WithQREncoder(garbage))
	require.NoError(t, err)

	artifact, err := r.Render(Input{Request: sampleRequest()})
	assert.Nil(t, artifact)

	var renderErr *types.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "layout", renderErr.Stage)
}

func TestRenderer_NilRequest(t *testing.T) {
	r, err := NewRenderer(testOffice())
	require.NoError(t, err)

	_, err = r.Render(Input{})
	var renderErr *types.RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestNewRenderer_MissingSealFile(t *testing.T) {
	office := testOffice()
	office.LeftSealPath = "/nonexistent/seal.png"

	_, err := NewRenderer(office)
	assert.Error(t, err)
}
