package eastmoney

// Endpoint table of the jywg.18.cn trade gateway. Every authenticated path is
// a template receiving the session validate key as query parameter.
const defaultBaseURL = "https://jywg.18.cn"

const (
	pathCaptcha        = "/Login/YZM?randNum="
	pathAuthentication = "/Login/Authentication"
	pathValidateKey    = "/Trade/Buy"
	pathStockList      = "/Search/GetStockList?validatekey=%s"
	pathOrdersData     = "/Search/GetOrdersData?validatekey=%s"
	pathDealData       = "/Search/GetDealData?validatekey=%s"
	pathAssets         = "/Com/GetAssets?validatekey=%s"
)

// The gateway serves the login page to browsers only; replaying a plausible
// browser profile keeps it happy.
var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; WOW64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/63.0.3239.132 Safari/537.36",
	"Accept":          "*/*",
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8,zh-TW;q=0.7",
	"Referer":         "https://jywg.18.cn/Login?el=1&clear=1",
}
