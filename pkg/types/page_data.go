package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
	UserName        string
	Role            Role
	IsAdmin         bool
	HomePath        string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

// FlashSetter receives the one-shot messages carried in the query string after a redirect.
type FlashSetter interface {
	SetFlash(notice, errMsg, message string)
}

type BasePageData struct {
	Title   string
	Navbar  NavbarData
	Notice  string
	Error   string
	Message string
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

func (d *BasePageData) SetFlash(notice, errMsg, message string) {
	if d.Notice == "" {
		d.Notice = notice
	}
	if d.Error == "" {
		d.Error = errMsg
	}
	if d.Message == "" {
		d.Message = message
	}
}

type HomePageData struct {
	BasePageData
	Announcements []*Announcement
	DocumentTypes []DocumentType
}

type AnnouncementsPageData struct {
	BasePageData
	Announcements []*Announcement
	Category      AnnouncementCategory
	Categories    []AnnouncementCategory
}

type LoginPageData struct {
	BasePageData
	Email string
}

type SignupPageData struct {
	BasePageData
	FullName    string
	Email       string
	FieldErrors map[string]string
}

type ConfirmSignupPageData struct {
	BasePageData
	Email string
}

type UserDashboardPageData struct {
	BasePageData
	Counts        RequestCounts
	Recent        []*Request
	Upcoming      []*Appointment
	DocumentTypes []DocumentType
}

type ApplyPageData struct {
	BasePageData
	DocumentType DocumentType
	Form         RequestForm
	FieldErrors  map[string]string

	ShowPurpose            bool
	ShowBusinessName       bool
	ShowResidencyDuration  bool
	ShowCharacterReference bool
}

type MyRequestsPageData struct {
	BasePageData
	Requests []*Request
}

type AppointmentsPageData struct {
	BasePageData
	Appointments []*Appointment
	Types        []AppointmentType
	Form         AppointmentForm
	FieldErrors  map[string]string
}

type ProfilePageData struct {
	BasePageData
	Profile      *Profile
	Form         ProfileForm
	FieldErrors  map[string]string
	HasSignature bool
}

type AdminOverviewPageData struct {
	BasePageData
	Counts    RequestCounts
	Pending   []*Request
	Upcoming  []*Appointment
	Residents int
}

type AdminRequestsPageData struct {
	BasePageData
	Tab      string
	Requests []*Request
}

type AdminAppointmentsPageData struct {
	BasePageData
	Appointments []*Appointment
	Statuses     []AppointmentStatus
}

type AuditPageData struct {
	BasePageData
	Entries []*AppointmentAuditEntry
}

type AdminAnnouncementsPageData struct {
	BasePageData
	Announcements []*Announcement
	Categories    []AnnouncementCategory
	Form          AnnouncementForm
	FieldErrors   map[string]string
	Editing       *Announcement
}

type ResidentsPageData struct {
	BasePageData
	Residents []*Profile
}

type RolesPageData struct {
	BasePageData
	Profiles []*Profile
	Roles    []Role
}
