package configuration

import "github.com/adampresley/configinator"

type Config struct {
	AdminEmail             string `flag:"adminemail" env:"ADMIN_EMAIL" default:"" description:"Admin email for the static identity provider"`
	AdminPasswordHash      string `flag:"adminpasswordhash" env:"ADMIN_PASSWORD_HASH" default:"" description:"Bcrypt hash of the admin password for the static identity provider"`
	AwsEndpointUrl         string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion              string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId         string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey     string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket              string `flag:"awsbucket" env:"AWS_BUCKET" default:"weddinggallery" description:"S3 bucket"`
	CloudinaryCloudName    string `flag:"cloudname" env:"CLOUDINARY_CLOUD_NAME" default:"" description:"Cloudinary cloud name"`
	CloudinaryEndpoint     string `flag:"cloudep" env:"CLOUDINARY_ENDPOINT" default:"" description:"Override for the Cloudinary upload URL"`
	CloudinaryUploadPreset string `flag:"uploadpreset" env:"CLOUDINARY_UPLOAD_PRESET" default:"unsigned_preset" description:"Cloudinary unsigned upload preset"`
	CookieSecret           string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	DSN                    string `flag:"dsn" env:"DSN" default:"file:./data/weddinggallery.db" description:"Data source name"`
	EmailApiKey            string `flag:"emailapikey" env:"EMAIL_API_KEY" default:"" description:"API key for sending emails"`
	FirebaseApiKey         string `flag:"firebaseapikey" env:"FIREBASE_API_KEY" default:"" description:"Firebase web API key"`
	FirebaseEndpoint       string `flag:"firebaseep" env:"FIREBASE_ENDPOINT" default:"https://identitytoolkit.googleapis.com" description:"Firebase Identity Toolkit endpoint"`
	FromEmail              string `flag:"fromemail" env:"FROM_EMAIL" default:"noreply@weddinggallery.local" description:"Sender address for notifications"`
	Host                   string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	IdentityProvider       string `flag:"identity" env:"IDENTITY_PROVIDER" default:"static" description:"Identity provider. Valid values are 'firebase' and 'static'"`
	LogLevel               string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	LoginCooldownMinutes   int    `flag:"logincooldown" env:"LOGIN_COOLDOWN_MINUTES" default:"5" description:"Minutes the login form stays locked after too many failures"`
	LoginMaxAttempts       int    `flag:"loginattempts" env:"LOGIN_MAX_ATTEMPTS" default:"5" description:"Consecutive failed logins before the lock"`
	MaxImageEdge           int    `flag:"maxedge" env:"MAX_IMAGE_EDGE" default:"2560" description:"Longest edge of photos stored in S3. 0 keeps originals"`
	MaxParallelUploads     int    `flag:"parallel" env:"MAX_PARALLEL_UPLOADS" default:"5" description:"Maximum number of uploads in flight"`
	MaxUploadMB            int    `flag:"maxuploadmb" env:"MAX_UPLOAD_MB" default:"4096" description:"Maximum size of one upload request in megabytes"`
	NotifyEmail            string `flag:"notifyemail" env:"NOTIFY_EMAIL" default:"" description:"Where upload summaries are sent. Empty disables them"`
	OrphanGraceHours       int    `flag:"orphangrace" env:"ORPHAN_GRACE_HOURS" default:"24" description:"Hours before an S3 upload without a photo record is deleted"`
	PublicBaseURL          string `flag:"publicbaseurl" env:"PUBLIC_BASE_URL" default:"" description:"Public URL prefix for S3 objects"`
	SpoolDir               string `flag:"spooldir" env:"SPOOL_DIR" default:"" description:"Directory for files waiting to be uploaded. Empty uses the system temp dir"`
	UploadBackend          string `flag:"uploadbackend" env:"UPLOAD_BACKEND" default:"cloudinary" description:"Where photos are stored. Valid values are 'cloudinary' and 's3'"`
	UploadFolder           string `flag:"uploadfolder" env:"UPLOAD_FOLDER" default:"photos" description:"S3 folder for uploaded photos"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
