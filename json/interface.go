package json

// EncoderInterface is satisfied by *Encoder and by encoding/json's encoder.
type EncoderInterface interface {
	Encode(any) error
}

// DecoderInterface is satisfied by *Decoder and by encoding/json's decoder.
type DecoderInterface interface {
	Decode(any) error
}

var (
	_ EncoderInterface = (*Encoder)(nil)
	_ DecoderInterface = (*Decoder)(nil)
)
