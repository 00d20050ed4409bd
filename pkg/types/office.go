package types

// Office is the issuing barangay printed on every generated document.
type Office struct {
	Province       string `envconfig:"PROVINCE" default:"Cebu"`
	Municipality   string `envconfig:"MUNICIPALITY" default:"Cebu City"`
	Barangay       string `envconfig:"BARANGAY" default:"Busay"`
	PunongBarangay string `envconfig:"PUNONG_BARANGAY" default:"ENGR LAURON"`
	Secretary      string `envconfig:"SECRETARY" default:"MAM BUHAWE"`
	CTCNumber      string `envconfig:"CTC_NUMBER"`
	IssuedAt       string `envconfig:"ISSUED_AT" default:"Busay, Cebu City"`

	// Optional PNG/JPEG seals. A drawn seal is used when unset.
	LeftSealPath  string `envconfig:"LEFT_SEAL_PATH"`
	RightSealPath string `envconfig:"RIGHT_SEAL_PATH"`
}
