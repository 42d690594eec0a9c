package packet

// StatusResponse carries the server list JSON (clientbound 0x00 in Status state).
type StatusResponse struct {
	JSONResponse string `mc:"string"`
}

func (StatusResponse) PacketID() int32 { return 0x00 }
