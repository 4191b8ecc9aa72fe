package videobackend

type Kind int

const (
	KindUnknown Kind = iota
	KindVideoInput
	KindAudioInput
)

func (k Kind) String() string {
	switch k {
	case KindVideoInput:
		return "video input"
	case KindAudioInput:
		return "audio input"
	default:
		return "unknown"
	}
}

type DeviceInfo struct {
	ID    string
	Label string
	Kind  Kind
}
