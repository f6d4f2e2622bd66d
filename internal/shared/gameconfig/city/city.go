package city

import (
	"CityCard/internal/shared/config"
)

// Municipality 直辖市与特区挂在同一个伪省份下，不参与同省规则。
const Municipality = "直辖市和特区"

type catalogFile struct {
	Capitals   []string `json:"capitals" mapstructure:"capitals"`
	Coastal    []string `json:"coastal" mapstructure:"coastal"`
	Autonomous []string `json:"autonomous" mapstructure:"autonomous"`
}

// Catalog 城市地理目录：省会、沿海、自治区。只读，可被多个房间共享。
type Catalog struct {
	capitals   map[string]struct{}
	coastal    map[string]struct{}
	autonomous map[string]struct{}
}

var builtinCapitals = []string{
	"哈尔滨市", "长春市", "沈阳市", "呼和浩特市", "石家庄市", "太原市", "济南市",
	"郑州市", "西安市", "兰州市", "银川市", "西宁市", "乌鲁木齐市", "拉萨市",
	"南京市", "合肥市", "杭州市", "南昌市", "福州市", "武汉市", "长沙市",
	"广州市", "南宁市", "海口市", "成都市", "贵阳市", "昆明市", "台北市",
}

var builtinCoastal = []string{
	"大连市", "秦皇岛市", "唐山市", "天津市", "东营市", "烟台市", "威海市", "青岛市",
	"日照市", "连云港市", "盐城市", "南通市", "上海市", "宁波市", "温州市", "福州市",
	"厦门市", "泉州市", "汕头市", "深圳市", "珠海市", "广州市", "湛江市", "北海市",
	"海口市", "三亚市", "台北市", "高雄市", "香港", "澳门",
}

var builtinAutonomous = []string{
	"内蒙古自治区", "广西壮族自治区", "西藏自治区", "宁夏回族自治区", "新疆维吾尔自治区",
}

func Builtin() *Catalog {
	return newCatalog(catalogFile{
		Capitals:   builtinCapitals,
		Coastal:    builtinCoastal,
		Autonomous: builtinAutonomous,
	})
}

// Load 从 json/yaml 读取目录；文件里缺的列表沿用内置数据。
func Load(path string) (*Catalog, error) {
	var f catalogFile
	if err := config.Load(path, &f); err != nil {
		return nil, err
	}
	if len(f.Capitals) == 0 {
		f.Capitals = builtinCapitals
	}
	if len(f.Coastal) == 0 {
		f.Coastal = builtinCoastal
	}
	if len(f.Autonomous) == 0 {
		f.Autonomous = builtinAutonomous
	}
	return newCatalog(f), nil
}

func newCatalog(f catalogFile) *Catalog {
	return &Catalog{
		capitals:   toSet(f.Capitals),
		coastal:    toSet(f.Coastal),
		autonomous: toSet(f.Autonomous),
	}
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func (c *Catalog) IsProvincialCapital(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.capitals[name]
	return ok
}

func (c *Catalog) IsCoastal(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.coastal[name]
	return ok
}

func (c *Catalog) IsMunicipality(province string) bool {
	return province == Municipality
}

// CapitalTerm 日志用语：自治区叫“首府”，其余叫“省会”。
func (c *Catalog) CapitalTerm(province string) string {
	if c != nil {
		if _, ok := c.autonomous[province]; ok {
			return "首府"
		}
	}
	return "省会"
}
