package media

// OutputMimeType is the single format every transcoded image is encoded as.
const OutputMimeType = "image/jpeg"

// Image is a transcoded image ready for upload.
type Image struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Size returns the encoded size in bytes.
func (i *Image) Size() int {
	return len(i.Data)
}
