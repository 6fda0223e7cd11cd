package model

const (
	// SinDescripcion 描述缺失时的占位文本
	SinDescripcion = "SIN DESCRIPCION"
	// FamiliaExterno 不在目录中的 sku 的默认家族
	FamiliaExterno = "EXTERNO"
)

// CatalogEntry 产品目录条目
type CatalogEntry struct {
	Sku         string `json:"sku"`
	Descripcion string `json:"descripcion"`
	Familia     string `json:"familia"`
	Marca       string `json:"marca"`
}

// CatalogColumns 目录文件列顺序
var CatalogColumns = []string{"sku", "descripcion", "familia", "marca"}

// Catalog sku 到目录条目的索引
type Catalog map[string]CatalogEntry

// NewCatalog 由条目列表构造索引，重复 sku 以后出现者为准
func NewCatalog(entries []CatalogEntry) Catalog {
	c := make(Catalog, len(entries))
	for _, e := range entries {
		c[e.Sku] = e
	}
	return c
}

// Lookup 查找 sku
func (c Catalog) Lookup(sku string) (CatalogEntry, bool) {
	e, ok := c[sku]
	return e, ok
}

// Apply 用目录信息覆盖记录的描述字段；未收录的 sku 使用默认值
func (c Catalog) Apply(r *ProductionRecord, defaultMarca string) {
	if e, ok := c[r.Sku]; ok {
		r.Descripcion = e.Descripcion
		r.Familia = e.Familia
		r.Marca = e.Marca
		return
	}
	if r.Descripcion == "" {
		r.Descripcion = SinDescripcion
	}
	r.Familia = FamiliaExterno
	r.Marca = defaultMarca
}
