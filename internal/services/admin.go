package services

import (
	"context"
	"strings"
	"time"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminService backs the back-office screens. Callers gate access with
// AccountService.IsAdmin.
type AdminService struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewAdminService(db *gorm.DB, notifier notify.Notifier) *AdminService {
	return &AdminService{db: db, notifier: notifier}
}

func (s *AdminService) publish(tables ...string) {
	for _, t := range tables {
		notify.PublishTable(s.notifier, t)
	}
}

// ---------- products ----------

// ProductInput carries product fields. Nil pointers are left unchanged on update.
type ProductInput struct {
	Name         *string   `json:"name"`
	Brand        *string   `json:"brand"`
	Category     *string   `json:"category"`
	Image        *string   `json:"image"`
	Description  *string   `json:"description"`
	RebuyVotes   *int64    `json:"rebuy_votes"`
	NotVotes     *int64    `json:"not_votes"`
	RebuyReasons *[]string `json:"rebuy_reasons"`
	NotReasons   *[]string `json:"not_reasons"`
}

func (in ProductInput) validate(creating bool) error {
	if creating {
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return invalid("name is required")
		}
		if in.Brand == nil || strings.TrimSpace(*in.Brand) == "" {
			return invalid("brand is required")
		}
		if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
			return invalid("category is required")
		}
	}
	if (in.RebuyVotes != nil && *in.RebuyVotes < 0) || (in.NotVotes != nil && *in.NotVotes < 0) {
		return invalid("vote counts cannot be negative")
	}
	if (in.RebuyReasons != nil && len(*in.RebuyReasons) > models.MaxReasons) ||
		(in.NotReasons != nil && len(*in.NotReasons) > models.MaxReasons) {
		return invalid("at most 5 reasons per side")
	}
	return nil
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	p := models.Product{
		ID:       utils.NewProductID(),
		Name:     strings.TrimSpace(*in.Name),
		Brand:    strings.TrimSpace(*in.Brand),
		Category: strings.TrimSpace(*in.Category),
	}
	in.applyTo(&p)

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, backendErr("create product", err)
	}
	s.publish(notify.TableProducts)
	return &p, nil
}

// UpdateProduct writes only the supplied fields. Counters are touched only
// when RebuyVotes or NotVotes are set, so concurrent votes are never lost.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	res := db.Model(&models.Product{}).Where("id = ?", id).Updates(in.changes(time.Now()))
	if res.Error != nil {
		return nil, backendErr("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	var p models.Product
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("load product", err, ErrProductNotFound)
	}
	s.publish(notify.TableProducts)
	return &p, nil
}

// changes maps the non-nil fields to columns. Zero counters are kept.
func (in ProductInput) changes(now time.Time) map[string]any {
	set := map[string]any{"updated_at": now}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Brand != nil {
		set["brand"] = strings.TrimSpace(*in.Brand)
	}
	if in.Category != nil {
		set["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Image != nil {
		set["image"] = *in.Image
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.RebuyVotes != nil {
		set["rebuy_votes"] = *in.RebuyVotes
	}
	if in.NotVotes != nil {
		set["not_votes"] = *in.NotVotes
	}
	if in.RebuyReasons != nil {
		set["rebuy_reasons"] = datatypes.JSONSlice[string](*in.RebuyReasons)
	}
	if in.NotReasons != nil {
		set["not_reasons"] = datatypes.JSONSlice[string](*in.NotReasons)
	}
	return set
}

func (in ProductInput) applyTo(p *models.Product) {
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.RebuyVotes != nil {
		p.RebuyVotes = *in.RebuyVotes
	}
	if in.NotVotes != nil {
		p.NotVotes = *in.NotVotes
	}
	if in.RebuyReasons != nil {
		p.RebuyReasons = datatypes.JSONSlice[string](*in.RebuyReasons)
	}
	if in.NotReasons != nil {
		p.NotReasons = datatypes.JSONSlice[string](*in.NotReasons)
	}
}

// DeleteProduct removes the product with its votes and comments.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return backendErr("delete comments", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return backendErr("delete votes", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return backendErr("delete product", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(notify.TableProducts, notify.TableVotes, notify.TableComments)
	return nil
}

// ---------- brands ----------

type BrandInput struct {
	Name         *string `json:"name"`
	LogoURL      *string `json:"logo_url"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// ListBrands returns every brand, active or not.
func (s *AdminService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := s.db.WithContext(ctx).Order("display_order ASC, name ASC").Find(&brands).Error; err != nil {
		return nil, backendErr("list brands", err)
	}
	return brands, nil
}

func (s *AdminService) CreateBrand(ctx context.Context, in BrandInput) (*models.Brand, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name is required")
	}
	b := models.Brand{Name: strings.TrimSpace(*in.Name), IsActive: true}
	applyBrand(&b, in)

	if err := s.createWithActive(ctx, &b, b.IsActive); err != nil {
		if isDuplicate(err) {
			return nil, invalid("brand already exists")
		}
		return nil, backendErr("create brand", err)
	}
	s.publish(notify.TableBrands)
	return &b, nil
}

func (s *AdminService) UpdateBrand(ctx context.Context, id uint, in BrandInput) (*models.Brand, error) {
	db := s.db.WithContext(ctx)
	var b models.Brand
	if err := db.First(&b, id).Error; err != nil {
		return nil, notFoundOr("load brand", err, ErrNotFound)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalid("name is required")
		}
		b.Name = strings.TrimSpace(*in.Name)
	}
	applyBrand(&b, in)

	if err := db.Save(&b).Error; err != nil {
		if isDuplicate(err) {
			return nil, invalid("brand already exists")
		}
		return nil, backendErr("update brand", err)
	}
	s.publish(notify.TableBrands)
	return &b, nil
}

func applyBrand(b *models.Brand, in BrandInput) {
	if in.LogoURL != nil {
		b.LogoURL = *in.LogoURL
	}
	if in.DisplayOrder != nil {
		b.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}

func (s *AdminService) DeleteBrand(ctx context.Context, id uint) error {
	return s.deleteByID(ctx, &models.Brand{}, id, notify.TableBrands)
}

// ---------- categories ----------

type CategoryInput struct {
	Key          *string `json:"key"`
	NameEN       *string `json:"name_en"`
	NameFR       *string `json:"name_fr"`
	NameAR       *string `json:"name_ar"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// ListCategories returns every category, active or not.
func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("display_order ASC, key ASC").Find(&categories).Error; err != nil {
		return nil, backendErr("list categories", err)
	}
	return categories, nil
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Key == nil || strings.TrimSpace(*in.Key) == "" {
		return nil, invalid("key is required")
	}
	if in.NameEN == nil || strings.TrimSpace(*in.NameEN) == "" {
		return nil, invalid("name_en is required")
	}
	c := models.Category{Key: strings.ToLower(strings.TrimSpace(*in.Key)), IsActive: true}
	applyCategory(&c, in)

	if err := s.createWithActive(ctx, &c, c.IsActive); err != nil {
		if isDuplicate(err) {
			return nil, invalid("category key already exists")
		}
		return nil, backendErr("create category", err)
	}
	s.publish(notify.TableCategories)
	return &c, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	db := s.db.WithContext(ctx)
	var c models.Category
	if err := db.First(&c, id).Error; err != nil {
		return nil, notFoundOr("load category", err, ErrNotFound)
	}
	if in.Key != nil {
		if strings.TrimSpace(*in.Key) == "" {
			return nil, invalid("key is required")
		}
		c.Key = strings.ToLower(strings.TrimSpace(*in.Key))
	}
	applyCategory(&c, in)

	if err := db.Save(&c).Error; err != nil {
		if isDuplicate(err) {
			return nil, invalid("category key already exists")
		}
		return nil, backendErr("update category", err)
	}
	s.publish(notify.TableCategories)
	return &c, nil
}

func applyCategory(c *models.Category, in CategoryInput) {
	if in.NameEN != nil {
		c.NameEN = strings.TrimSpace(*in.NameEN)
	}
	if in.NameFR != nil {
		c.NameFR = strings.TrimSpace(*in.NameFR)
	}
	if in.NameAR != nil {
		c.NameAR = strings.TrimSpace(*in.NameAR)
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

func (s *AdminService) DeleteCategory(ctx context.Context, id uint) error {
	return s.deleteByID(ctx, &models.Category{}, id, notify.TableCategories)
}

// ---------- site content ----------

type ContentInput struct {
	ContentKey  *string `json:"content_key"`
	ContentEN   *string `json:"content_en"`
	ContentFR   *string `json:"content_fr"`
	ContentAR   *string `json:"content_ar"`
	ContentType *string `json:"content_type"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

func (s *AdminService) ListContent(ctx context.Context) ([]models.SiteContent, error) {
	var rows []models.SiteContent
	if err := s.db.WithContext(ctx).Order("category ASC, content_key ASC").Find(&rows).Error; err != nil {
		return nil, backendErr("list site content", err)
	}
	return rows, nil
}

func (s *AdminService) CreateContent(ctx context.Context, in ContentInput) (*models.SiteContent, error) {
	if in.ContentKey == nil || strings.TrimSpace(*in.ContentKey) == "" {
		return nil, invalid("content_key is required")
	}
	if in.ContentEN == nil {
		return nil, invalid("content_en is required")
	}
	row := models.SiteContent{ContentKey: strings.TrimSpace(*in.ContentKey), ContentType: "text", Category: "general"}
	applyContent(&row, in)

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return nil, invalid("content key already exists")
		}
		return nil, backendErr("create site content", err)
	}
	s.publish(notify.TableSiteContent)
	return &row, nil
}

func (s *AdminService) UpdateContent(ctx context.Context, id uint, in ContentInput) (*models.SiteContent, error) {
	db := s.db.WithContext(ctx)
	var row models.SiteContent
	if err := db.First(&row, id).Error; err != nil {
		return nil, notFoundOr("load site content", err, ErrNotFound)
	}
	if in.ContentKey != nil {
		if strings.TrimSpace(*in.ContentKey) == "" {
			return nil, invalid("content_key is required")
		}
		row.ContentKey = strings.TrimSpace(*in.ContentKey)
	}
	applyContent(&row, in)

	if err := db.Save(&row).Error; err != nil {
		if isDuplicate(err) {
			return nil, invalid("content key already exists")
		}
		return nil, backendErr("update site content", err)
	}
	s.publish(notify.TableSiteContent)
	return &row, nil
}

func applyContent(row *models.SiteContent, in ContentInput) {
	if in.ContentEN != nil {
		row.ContentEN = *in.ContentEN
	}
	if in.ContentFR != nil {
		row.ContentFR = *in.ContentFR
	}
	if in.ContentAR != nil {
		row.ContentAR = *in.ContentAR
	}
	if in.ContentType != nil && *in.ContentType != "" {
		row.ContentType = *in.ContentType
	}
	if in.Category != nil && *in.Category != "" {
		row.Category = *in.Category
	}
	if in.Description != nil {
		row.Description = in.Description
	}
}

func (s *AdminService) DeleteContent(ctx context.Context, id uint) error {
	return s.deleteByID(ctx, &models.SiteContent{}, id, notify.TableSiteContent)
}

// ---------- comments & votes ----------

// AdminComment is a comment with its product's name and brand.
type AdminComment struct {
	models.Comment
	ProductName  string `json:"product_name"`
	ProductBrand string `json:"product_brand"`
}

// ListComments returns comments newest first.
func (s *AdminService) ListComments(ctx context.Context, limit int) ([]AdminComment, error) {
	var rows []AdminComment
	q := s.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, products.name AS product_name, products.brand AS product_brand").
		Joins("LEFT JOIN products ON products.id = comments.product_id").
		Order("comments.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, backendErr("list comments", err)
	}
	return rows, nil
}

func (s *AdminService) DeleteComment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return backendErr("delete comment", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(notify.TableComments)
	return nil
}

// DeleteVote removes a vote row so that voter may vote again. Counters are
// left as they are; adjust them with UpdateProduct if needed.
func (s *AdminService) DeleteVote(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Vote{})
	if res.Error != nil {
		return backendErr("delete vote", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(notify.TableVotes)
	return nil
}

// ListVotes returns a product's votes newest first.
func (s *AdminService) ListVotes(ctx context.Context, productID string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC").Find(&votes).Error; err != nil {
		return nil, backendErr("list votes", err)
	}
	return votes, nil
}

// ---------- users ----------

// AdminUser is a profile with its vote count and roles.
type AdminUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	VoteCount   int64     `json:"vote_count"`
	IsAdmin     bool      `json:"is_admin"`
}

func (s *AdminService) ListUsers(ctx context.Context) ([]AdminUser, error) {
	db := s.db.WithContext(ctx)

	var users []AdminUser
	err := db.Table("profiles").
		Select("profiles.id, profiles.email, profiles.display_name, profiles.created_at, COUNT(user_votes.id) AS vote_count").
		Joins("LEFT JOIN user_votes ON user_votes.user_id = profiles.id").
		Group("profiles.id, profiles.email, profiles.display_name, profiles.created_at").
		Order("profiles.created_at DESC").
		Scan(&users).Error
	if err != nil {
		return nil, backendErr("list users", err)
	}

	var admins []string
	if err := db.Model(&models.UserRole{}).Where("role = ?", models.RoleAdmin).Pluck("user_id", &admins).Error; err != nil {
		return nil, backendErr("list admin roles", err)
	}
	isAdmin := make(map[string]bool, len(admins))
	for _, id := range admins {
		isAdmin[id] = true
	}
	for i := range users {
		users[i].IsAdmin = isAdmin[users[i].ID]
	}
	return users, nil
}

// ---------- helpers ----------

// createWithActive works around gorm skipping false for columns with a default.
func (s *AdminService) createWithActive(ctx context.Context, value any, active bool) error {
	db := s.db.WithContext(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(value).Error; err != nil {
			return err
		}
		if active {
			return nil
		}
		return tx.Model(value).Update("is_active", false).Error
	})
}

func (s *AdminService) deleteByID(ctx context.Context, model any, id uint, table string) error {
	res := s.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return backendErr("delete "+table, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(table)
	return nil
}
