package model

// ConfigurationID is the key of the single configuration record.
const ConfigurationID = "MAIN_CONFIGURATION"

// Configuration holds the credentials and instance settings used to talk to
// the image search API.
type Configuration struct {
	ID              string `json:"-"`
	Password        string `json:"password"`
	AccessKeyID     string `json:"accessKeyId"`
	AccessKeySecret string `json:"accessKeySecret"`
	RegionID        string `json:"regionId"`
	InstanceName    string `json:"instanceName"`
	Domain          string `json:"domain"`
	Namespace       string `json:"namespace"`
	BaseURL         string `json:"baseUrl"`
}
